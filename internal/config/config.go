package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

// DatabaseConfig selects the storage backend. Driver is "sqlite" (Path is the
// database file) or "postgres" (DSN is a lib/pq connection string).
type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	PasswordHasher string `mapstructure:"password_hasher"` // bcrypt / pbkdf2
	BcryptCost     int    `mapstructure:"bcrypt_cost"`
	PasswordLength int    `mapstructure:"password_length"`
}

type LogConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json / console
}

// LedgerConfig holds the initial-balance policy.
type LedgerConfig struct {
	DefaultActor    string `mapstructure:"default_actor"`
	ManagerPoints   int64  `mapstructure:"manager_points"`
	AssociatePoints int64  `mapstructure:"associate_points"`
}

type ExchangeConfig struct {
	BaseURL         string        `mapstructure:"base_url"` // "{currency}" is replaced by the currency code
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBase       time.Duration `mapstructure:"retry_base"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
	From     string        `mapstructure:"from"`
}

type EventsConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Exchange ExchangeConfig `mapstructure:"exchange"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Events   EventsConfig   `mapstructure:"events"`
}

var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/dundie.db")
	v.SetDefault("database.log_mode", false)

	v.SetDefault("jwt.issuer", "dundie")
	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("security.password_hasher", "bcrypt")
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.password_length", 8)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("ledger.default_actor", "system")
	v.SetDefault("ledger.manager_points", 100)
	v.SetDefault("ledger.associate_points", 500)

	v.SetDefault("exchange.base_url", "https://economia.awesomeapi.com.br/json/last/USD-{currency}")
	v.SetDefault("exchange.timeout", 5*time.Second)
	v.SetDefault("exchange.max_retries", 2)
	v.SetDefault("exchange.retry_base", 200*time.Millisecond)
	v.SetDefault("exchange.breaker_failures", 5)
	v.SetDefault("exchange.breaker_timeout", 30*time.Second)

	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 8025)
	v.SetDefault("smtp.timeout", 5*time.Second)
	v.SetDefault("smtp.from", "admin@dundie.com")
}

// Load reads configuration from path (e.g. "config.yaml"). A missing file is
// not an error: defaults plus DUNDIE_* environment variables are used. An
// optional .env in the working directory is loaded first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. DUNDIE_SERVER_PORT=9000
	v.SetEnvPrefix("DUNDIE")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
