package models

// Employee is the root entity. Balance, transactions and the login user are
// owned by exactly one employee and removed with it.
type Employee struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	Department string    `gorm:"size:128;index;not null" json:"dept"`
	Role       string    `gorm:"size:128;not null" json:"role"`
	Currency   string    `gorm:"size:8;not null;default:USD" json:"currency"`
	Privilege  Privilege `gorm:"size:16;not null;default:associate" json:"privilege"`

	Balance      *Balance      `gorm:"constraint:OnDelete:CASCADE" json:"balance,omitempty"`
	Transactions []Transaction `gorm:"constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
	User         *User         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Superuser reports whether the employee may move points without paying for them.
func (e *Employee) Superuser() bool {
	return e.Privilege == PrivilegeSuperuser
}

// ManagerTier reports whether the employee is seeded with manager-tier points.
func (e *Employee) ManagerTier() bool {
	return e.Privilege == PrivilegeSuperuser || e.Privilege == PrivilegeManagement
}
