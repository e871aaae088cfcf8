// Package store holds the employee queries of the entity store. Every
// function takes the *gorm.DB to run on, which may be a transaction.
package store

import (
	"errors"
	"fmt"
	"strings"

	"dundie-rewards/internal/models"
	"dundie-rewards/internal/util"

	"gorm.io/gorm"
)

// DefaultCurrency is assigned when a record carries no currency.
const DefaultCurrency = "USD"

var ErrNotFound = errors.New("employee not found")

// Fields are the mutable attributes supplied by a loader record.
type Fields struct {
	Name       string `validate:"required"`
	Email      string `validate:"dundie_email"`
	Department string `validate:"required"`
	Role       string `validate:"required"`
	Currency   string `validate:"omitempty,currency"`
}

// Normalize trims every field, lower-cases the email and upper-cases the currency.
func (f Fields) Normalize() Fields {
	return Fields{
		Name:       strings.TrimSpace(f.Name),
		Email:      strings.ToLower(strings.TrimSpace(f.Email)),
		Department: strings.TrimSpace(f.Department),
		Role:       strings.TrimSpace(f.Role),
		Currency:   strings.ToUpper(strings.TrimSpace(f.Currency)),
	}
}

// Filter restricts listings by equality on email and/or department.
// Empty fields match everything.
type Filter struct {
	Email      string
	Department string
}

func (f Filter) apply(db *gorm.DB) *gorm.DB {
	if f.Email != "" {
		db = db.Where("email = ?", strings.ToLower(f.Email))
	}
	if f.Department != "" {
		db = db.Where("department = ?", f.Department)
	}
	return db
}

// UpsertEmployee inserts the employee if the email is unknown, otherwise it
// updates name, department, role and, when given, currency. The returned
// bool reports whether a row was created. Invalid fields are returned as
// *util.ValidationError without touching the database.
func UpsertEmployee(db *gorm.DB, fields Fields) (*models.Employee, bool, error) {
	fields = fields.Normalize()
	if err := util.ValidateStruct(fields); err != nil {
		return nil, false, err
	}

	existing, err := FindByEmail(db, fields.Email)
	switch {
	case errors.Is(err, ErrNotFound):
		currency := fields.Currency
		if currency == "" {
			currency = DefaultCurrency
		}
		emp := models.Employee{
			Email:      fields.Email,
			Name:       fields.Name,
			Department: fields.Department,
			Role:       fields.Role,
			Currency:   currency,
			Privilege:  models.ClassifyPrivilege(fields.Role, fields.Department),
		}
		if err := db.Create(&emp).Error; err != nil {
			return nil, false, fmt.Errorf("create employee %s: %w", fields.Email, err)
		}
		return &emp, true, nil
	case err != nil:
		return nil, false, err
	}

	existing.Name = fields.Name
	existing.Department = fields.Department
	existing.Role = fields.Role
	existing.Privilege = models.ClassifyPrivilege(fields.Role, fields.Department)
	if fields.Currency != "" {
		existing.Currency = fields.Currency
	}
	err = db.Model(existing).Updates(map[string]interface{}{
		"name":       existing.Name,
		"department": existing.Department,
		"role":       existing.Role,
		"currency":   existing.Currency,
		"privilege":  string(existing.Privilege),
	}).Error
	if err != nil {
		return nil, false, fmt.Errorf("update employee %s: %w", fields.Email, err)
	}
	return existing, false, nil
}

// FindByEmail loads one employee with balance and user.
func FindByEmail(db *gorm.DB, email string) (*models.Employee, error) {
	var emp models.Employee
	err := db.Preload("Balance").Preload("User").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find employee %s: %w", email, err)
	}
	return &emp, nil
}

// FindByID loads one employee with balance and user.
func FindByID(db *gorm.DB, id uint) (*models.Employee, error) {
	var emp models.Employee
	if err := db.Preload("Balance").Preload("User").First(&emp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find employee %d: %w", id, err)
	}
	return &emp, nil
}

// List returns the employees matching f in id order, balances preloaded.
func List(db *gorm.DB, f Filter) ([]models.Employee, error) {
	var employees []models.Employee
	if err := f.apply(db.Preload("Balance")).Order("id").Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// Currencies returns the distinct currencies of the employees matching f.
func Currencies(db *gorm.DB, f Filter) ([]string, error) {
	var currencies []string
	err := f.apply(db.Model(&models.Employee{})).
		Distinct().Order("currency").
		Pluck("currency", &currencies).Error
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	return currencies, nil
}
