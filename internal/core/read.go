package core

import (
	"context"
	"time"

	"dundie-rewards/internal/exchange"
	"dundie-rewards/internal/ledger"
	"dundie-rewards/internal/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var decimalOne = decimal.NewFromInt(1)

// EmployeeView is one row of a read. Total is Balance converted with the
// employee's currency rate and is for display only.
type EmployeeView struct {
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Role            string          `json:"role"`
	Department      string          `json:"dept"`
	Currency        string          `json:"currency"`
	Balance         decimal.Decimal `json:"balance"`
	Rate            decimal.Decimal `json:"rate"`
	RateName        string          `json:"rate_name,omitempty"`
	Total           decimal.Decimal `json:"total"`
	LastTransaction *time.Time      `json:"last_transaction,omitempty"`
}

// Read returns the employees matching q with their converted totals.
func (s *Service) Read(ctx context.Context, q Query) ([]EmployeeView, error) {
	db := s.db.WithContext(ctx)

	employees, err := store.List(db, q.filter())
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return []EmployeeView{}, nil
	}

	currencies, err := store.Currencies(db, q.filter())
	if err != nil {
		return nil, err
	}
	rates := s.rates.Rates(ctx, currencies)

	views := make([]EmployeeView, 0, len(employees))
	for i := range employees {
		emp := &employees[i]
		view, err := s.view(db, emp.ID, rates[emp.Currency])
		if err != nil {
			return nil, err
		}
		view.Name = emp.Name
		view.Email = emp.Email
		view.Role = emp.Role
		view.Department = emp.Department
		view.Currency = emp.Currency
		view.Balance = ledger.BalanceOf(emp)
		view.Total = exchange.Total(rates[emp.Currency], view.Balance)
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) view(db *gorm.DB, employeeID uint, rate exchange.Rate) (EmployeeView, error) {
	view := EmployeeView{Rate: rate.Ask, RateName: rate.Name}

	last, err := store.LastTransaction(db, employeeID)
	if err != nil {
		return view, err
	}
	if last != nil {
		at := last.Date.UTC()
		view.LastTransaction = &at
	}
	return view, nil
}
