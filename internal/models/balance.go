package models

// Balance caches the sum of an employee's transactions.
type Balance struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	Value      Points `gorm:"not null" json:"value"`
	EmployeeID uint   `gorm:"uniqueIndex;not null" json:"-"`
}
