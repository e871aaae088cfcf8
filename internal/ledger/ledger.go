// Package ledger appends transactions and keeps each employee's cached
// balance equal to the sum of their transactions.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"dundie-rewards/internal/config"
	"dundie-rewards/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalancePlaces is the fixed precision of a stored balance.
const BalancePlaces = 3

const InitialBalanceDescription = "Initial balance"

// PrecisionError rejects a value with more decimal places than a balance
// holds.
type PrecisionError struct {
	Value decimal.Decimal
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("value %s has more than %d decimal places", e.Value, BalancePlaces)
}

// CheckPrecision returns a *PrecisionError when v is finer than BalancePlaces.
func CheckPrecision(v decimal.Decimal) error {
	if !v.Equal(v.Round(BalancePlaces)) {
		return &PrecisionError{Value: v}
	}
	return nil
}

// Entry describes one transaction to append.
type Entry struct {
	Value       decimal.Decimal
	Description string
	Actor       string // empty means the ledger's default actor
	Reference   string
}

// Ledger holds the initial-balance policy.
type Ledger struct {
	defaultActor    string
	managerPoints   decimal.Decimal
	associatePoints decimal.Decimal
	now             func() time.Time
}

// New builds a ledger from the ledger section of the configuration.
func New(cfg config.LedgerConfig) *Ledger {
	actor := cfg.DefaultActor
	if actor == "" {
		actor = "system"
	}
	return &Ledger{
		defaultActor:    actor,
		managerPoints:   decimal.NewFromInt(cfg.ManagerPoints),
		associatePoints: decimal.NewFromInt(cfg.AssociatePoints),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// DefaultActor is recorded on transactions created by the system.
func (l *Ledger) DefaultActor() string {
	return l.defaultActor
}

// InitialPoints is the seed value for a newly created employee.
func (l *Ledger) InitialPoints(emp *models.Employee) decimal.Decimal {
	if emp.ManagerTier() {
		return l.managerPoints
	}
	return l.associatePoints
}

// SetInitialBalance seeds a new employee with the "Initial balance" transaction.
func (l *Ledger) SetInitialBalance(db *gorm.DB, emp *models.Employee) error {
	return l.Post(db, emp, Entry{
		Value:       l.InitialPoints(emp),
		Description: InitialBalanceDescription,
	})
}

// AddTransaction appends a transaction for emp and recomputes its balance.
func (l *Ledger) AddTransaction(db *gorm.DB, emp *models.Employee, value decimal.Decimal, description, actor string) error {
	return l.Post(db, emp, Entry{Value: value, Description: description, Actor: actor})
}

// Post inserts the transaction and rewrites the balance row in one database
// transaction (a savepoint when db is already inside one). emp.Balance is
// refreshed on success.
func (l *Ledger) Post(db *gorm.DB, emp *models.Employee, e Entry) error {
	if emp == nil || emp.ID == 0 {
		return errors.New("ledger: employee is not persisted")
	}
	if err := CheckPrecision(e.Value); err != nil {
		return err
	}
	actor := e.Actor
	if actor == "" {
		actor = l.defaultActor
	}

	var balance models.Balance
	err := db.Transaction(func(tx *gorm.DB) error {
		txn := models.Transaction{
			EmployeeID:  emp.ID,
			Value:       models.NewPoints(e.Value),
			Description: e.Description,
			Actor:       actor,
			Date:        l.now(),
			Reference:   e.Reference,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		sum, err := Sum(tx, emp.ID)
		if err != nil {
			return err
		}

		balance, err = writeBalance(tx, emp.ID, sum)
		return err
	})
	if err != nil {
		return fmt.Errorf("post transaction for %s: %w", emp.Email, err)
	}

	emp.Balance = &balance
	return nil
}

// Sum adds up every transaction value of the employee.
func Sum(db *gorm.DB, employeeID uint) (decimal.Decimal, error) {
	var values []decimal.Decimal
	err := db.Model(&models.Transaction{}).
		Where("employee_id = ?", employeeID).
		Pluck("value", &values).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}

	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total, nil
}

func writeBalance(tx *gorm.DB, employeeID uint, sum decimal.Decimal) (models.Balance, error) {
	value := sum.Round(BalancePlaces)

	var balance models.Balance
	err := tx.Where("employee_id = ?", employeeID).First(&balance).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		balance = models.Balance{EmployeeID: employeeID, Value: models.NewPoints(value)}
		if err := tx.Create(&balance).Error; err != nil {
			return balance, fmt.Errorf("create balance: %w", err)
		}
		return balance, nil
	case err != nil:
		return balance, fmt.Errorf("load balance: %w", err)
	}

	if err := tx.Model(&balance).Update("value", value).Error; err != nil {
		return balance, fmt.Errorf("update balance: %w", err)
	}
	balance.Value = models.NewPoints(value)
	return balance, nil
}

// BalanceOf returns the cached balance of emp, zero when it has none yet.
func BalanceOf(emp *models.Employee) decimal.Decimal {
	if emp == nil || emp.Balance == nil {
		return decimal.Zero
	}
	return emp.Balance.Value.Decimal
}
