package core

import (
	"context"
	"errors"
	"fmt"

	"dundie-rewards/internal/loader"
	"dundie-rewards/internal/models"
	"dundie-rewards/internal/store"
	"dundie-rewards/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LoadResult describes one loaded employee. Password is only set for
// employees created by this load and is never serialized.
type LoadResult struct {
	Line       int             `json:"line,omitempty"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Department string          `json:"dept"`
	Role       string          `json:"role"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	Created    bool            `json:"created"`
	Password   string          `json:"-"`
}

// LoadReport is the outcome of a batch load.
type LoadReport struct {
	Results []LoadResult `json:"results"`
	Skipped []error      `json:"-"`
}

// Load parses the CSV file at path and loads every valid row.
func (s *Service) Load(ctx context.Context, path string) (*LoadReport, error) {
	records, rowErrs, err := loader.ReadFile(path)
	if err != nil {
		s.logger(ctx).Error("load file", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	report, err := s.LoadRecords(ctx, records)
	if err != nil {
		return nil, err
	}
	for _, rowErr := range rowErrs {
		s.logger(ctx).Warn("skipping malformed row", zap.String("path", path), zap.Error(rowErr))
	}
	report.Skipped = append(rowErrs, report.Skipped...)
	return report, nil
}

// LoadRecords upserts every record. Records failing validation are logged
// and skipped; any other error stops the batch.
func (s *Service) LoadRecords(ctx context.Context, records []loader.Record) (*LoadReport, error) {
	report := &LoadReport{Results: make([]LoadResult, 0, len(records))}
	for _, rec := range records {
		emp, created, password, err := s.LoadOne(ctx, rec.Fields)
		var verr *util.ValidationError
		if errors.As(err, &verr) {
			s.logger(ctx).Warn("skipping invalid record", zap.Int("line", rec.Line), zap.Error(err))
			report.Skipped = append(report.Skipped, fmt.Errorf("line %d: %w", rec.Line, err))
			continue
		}
		if err != nil {
			return nil, err
		}

		result := newLoadResult(emp, created, password)
		result.Line = rec.Line
		report.Results = append(report.Results, result)
	}
	return report, nil
}

// LoadOne inserts or updates one employee. A new employee receives the
// initial balance and a login with a generated password, which is returned
// and emailed to them. Existing employees keep their balance and login.
func (s *Service) LoadOne(ctx context.Context, fields store.Fields) (*models.Employee, bool, string, error) {
	var (
		emp      *models.Employee
		created  bool
		password string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		emp, created, err = store.UpsertEmployee(tx, fields)
		if err != nil || !created {
			return err
		}

		if err := s.ledger.SetInitialBalance(tx, emp); err != nil {
			return err
		}

		password, err = util.GeneratePassword(s.passwordLength)
		if err != nil {
			return fmt.Errorf("generate password: %w", err)
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user := models.User{EmployeeID: emp.ID, Password: hash}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user for %s: %w", emp.Email, err)
		}
		emp.User = &user
		return nil
	})
	if err != nil {
		return nil, false, "", err
	}

	log := s.logger(ctx).With(zap.String("email", emp.Email))
	if created {
		log.Info("employee created", zap.String("privilege", string(emp.Privilege)))
		s.sendPassword(ctx, emp, password)
	} else {
		log.Info("employee updated")
	}
	return emp, created, password, nil
}

func (s *Service) sendPassword(ctx context.Context, emp *models.Employee, password string) {
	err := s.mailer.Send(ctx, s.mailFrom, []string{emp.Email}, PasswordSubject, fmt.Sprintf(PasswordBody, password))
	if err != nil {
		s.logger(ctx).Warn("password email not sent", zap.String("email", emp.Email), zap.Error(err))
	}
}

func newLoadResult(emp *models.Employee, created bool, password string) LoadResult {
	r := LoadResult{
		Name:       emp.Name,
		Email:      emp.Email,
		Department: emp.Department,
		Role:       emp.Role,
		Currency:   emp.Currency,
		Created:    created,
		Password:   password,
	}
	if emp.Balance != nil {
		r.Balance = emp.Balance.Value.Decimal
	}
	return r
}
