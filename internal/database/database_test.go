package database

import (
	"path/filepath"
	"testing"

	"dundie-rewards/internal/config"
	"dundie-rewards/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	return &config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "data", "dundie.db")}
}

func TestInitAndMigrate(t *testing.T) {
	db, err := Init(*openTemp(t))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"employee", "balance", "transaction", "user"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestInitRejectsUnknownDriver(t *testing.T) {
	_, err := Init(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestPostgresRequiresDSN(t *testing.T) {
	_, err := Init(config.DatabaseConfig{Driver: "postgres"})
	assert.Error(t, err)
}

func TestDeletingEmployeeCascades(t *testing.T) {
	db, err := Init(*openTemp(t))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	emp := models.Employee{Email: "jim@co.com", Name: "Jim", Department: "Sales", Role: "Salesman", Currency: "USD"}
	require.NoError(t, db.Create(&emp).Error)
	require.NoError(t, db.Create(&models.Balance{EmployeeID: emp.ID, Value: models.NewPoints(decimal.NewFromInt(500))}).Error)
	require.NoError(t, db.Create(&models.Transaction{EmployeeID: emp.ID, Value: models.NewPoints(decimal.NewFromInt(500)), Description: "Initial balance", Actor: "system"}).Error)
	require.NoError(t, db.Create(&models.User{EmployeeID: emp.ID, Password: "hash"}).Error)

	require.NoError(t, db.Delete(&emp).Error)

	var count int64
	require.NoError(t, db.Model(&models.Balance{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := Init(*openTemp(t))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	err = db.Create(&models.Balance{EmployeeID: 42, Value: models.NewPoints(decimal.Zero)}).Error
	assert.Error(t, err)
}
