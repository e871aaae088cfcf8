package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, int64(100), cfg.Ledger.ManagerPoints)
	assert.Equal(t, int64(500), cfg.Ledger.AssociatePoints)
	assert.Equal(t, "system", cfg.Ledger.DefaultActor)
	assert.Equal(t, 5*time.Second, cfg.Exchange.Timeout)
	assert.Equal(t, "admin@dundie.com", cfg.SMTP.From)
	assert.Equal(t, "bcrypt", cfg.Security.PasswordHasher)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
database:
  driver: postgres
  dsn: postgres://dundie@localhost/dundie?sslmode=disable
ledger:
  associate_points: 250
exchange:
  timeout: 2s
events:
  brokers: ["localhost:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, int64(250), cfg.Ledger.AssociatePoints)
	assert.Equal(t, int64(100), cfg.Ledger.ManagerPoints)
	assert.Equal(t, 2*time.Second, cfg.Exchange.Timeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Events.Brokers)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DUNDIE_LEDGER_DEFAULT_ACTOR", "payroll")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "payroll", cfg.Ledger.DefaultActor)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
