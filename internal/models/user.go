package models

// User is the login credential of an employee. Password holds a hash only.
type User struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	Password   string `gorm:"size:255;not null" json:"-"`
	EmployeeID uint   `gorm:"uniqueIndex;not null" json:"-"`
}
