package database

import (
	"fmt"

	"dundie-rewards/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Employee{},
		&models.Balance{},
		&models.Transaction{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
