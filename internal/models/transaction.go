package models

import "time"

// Transaction is an immutable ledger row. Date is stamped by the ledger when
// the row is written.
type Transaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Value       Points    `gorm:"not null" json:"value"`
	Description string    `gorm:"size:255;not null" json:"description"`
	Actor       string    `gorm:"size:255;index;not null" json:"actor"`
	Date        time.Time `gorm:"index;not null" json:"date"`
	Reference   string    `gorm:"size:64;index" json:"reference,omitempty"` // groups the rows of one transfer
	EmployeeID  uint      `gorm:"index;not null" json:"employee_id"`
}
