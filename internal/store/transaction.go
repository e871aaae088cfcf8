package store

import (
	"errors"
	"fmt"

	"dundie-rewards/internal/models"

	"gorm.io/gorm"
)

// LastTransaction returns the newest transaction of the employee, or nil
// when there is none.
func LastTransaction(db *gorm.DB, employeeID uint) (*models.Transaction, error) {
	var t models.Transaction
	err := db.Where("employee_id = ?", employeeID).
		Order("date DESC").Order("id DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last transaction of employee %d: %w", employeeID, err)
	}
	return &t, nil
}

// Transactions returns the employee's transactions newest first. A limit of
// zero or less returns all of them.
func Transactions(db *gorm.DB, employeeID uint, limit int) ([]models.Transaction, error) {
	q := db.Where("employee_id = ?", employeeID).Order("date DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []models.Transaction
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list transactions of employee %d: %w", employeeID, err)
	}
	return out, nil
}

// TransactionsByActor pages through the transactions recorded by actor,
// newest first. It also returns the total count and the email of each
// credited or debited employee keyed by employee id.
func TransactionsByActor(db *gorm.DB, actor string, offset, limit int) ([]models.Transaction, int64, map[uint]string, error) {
	var total int64
	if err := db.Model(&models.Transaction{}).Where("actor = ?", actor).Count(&total).Error; err != nil {
		return nil, 0, nil, fmt.Errorf("count transactions by %s: %w", actor, err)
	}

	var out []models.Transaction
	err := db.Where("actor = ?", actor).
		Order("date DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, nil, fmt.Errorf("list transactions by %s: %w", actor, err)
	}

	emails := make(map[uint]string)
	if len(out) == 0 {
		return out, total, emails, nil
	}
	ids := make([]uint, 0, len(out))
	for _, t := range out {
		ids = append(ids, t.EmployeeID)
	}
	var employees []models.Employee
	if err := db.Select("id", "email").Where("id IN ?", ids).Find(&employees).Error; err != nil {
		return nil, 0, nil, fmt.Errorf("resolve transaction employees: %w", err)
	}
	for _, e := range employees {
		emails[e.ID] = e.Email
	}
	return out, total, emails, nil
}
