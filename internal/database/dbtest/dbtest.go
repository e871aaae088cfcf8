// Package dbtest opens isolated, migrated in-memory databases for tests.
package dbtest

import (
	"testing"

	"dundie-rewards/internal/config"
	"dundie-rewards/internal/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// New returns a fresh in-memory sqlite database with the schema applied.
// The database is closed when the test ends.
func New(tb testing.TB) *gorm.DB {
	tb.Helper()

	path := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		tb.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		tb.Fatalf("migrate database: %v", err)
	}

	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
