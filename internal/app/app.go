// Package app wires configuration into a ready Service.
package app

import (
	"errors"
	"fmt"

	"dundie-rewards/internal/config"
	"dundie-rewards/internal/core"
	"dundie-rewards/internal/database"
	"dundie-rewards/internal/events"
	"dundie-rewards/internal/events/kafka"
	"dundie-rewards/internal/exchange"
	"dundie-rewards/internal/ledger"
	"dundie-rewards/internal/notify"
	"dundie-rewards/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the process-wide collaborators.
type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Service *core.Service
	Log     *zap.Logger

	closers []func() error
}

// New opens and migrates the database and builds the service.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.Init(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	a := &App{Config: cfg, DB: db, Log: log}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Events.Brokers) > 0 {
		p := kafka.NewPublisher(cfg.Events.Brokers)
		a.closers = append(a.closers, p.Close)
		publisher = p
		log.Info("publishing events to kafka", zap.Strings("brokers", cfg.Events.Brokers))
	}

	a.Service = core.NewService(core.Deps{
		DB:             db,
		Ledger:         ledger.New(cfg.Ledger),
		Rates:          exchange.NewClient(cfg.Exchange, log),
		Mailer:         notify.New(cfg.SMTP),
		Events:         publisher,
		Hasher:         util.PasswordHasher{Algorithm: cfg.Security.PasswordHasher, BcryptCost: cfg.Security.BcryptCost},
		PasswordLength: cfg.Security.PasswordLength,
		MailFrom:       cfg.SMTP.From,
		Logger:         log,
	})
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
