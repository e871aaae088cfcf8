// Package core orchestrates loading, reading and transferring points.
// It owns transaction boundaries; the store and ledger packages only run
// queries on the handle they are given.
package core

import (
	"context"

	"dundie-rewards/internal/events"
	"dundie-rewards/internal/exchange"
	"dundie-rewards/internal/ledger"
	"dundie-rewards/internal/logger"
	"dundie-rewards/internal/models"
	"dundie-rewards/internal/notify"
	"dundie-rewards/internal/store"
	"dundie-rewards/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MsgNoEmployees       = "No employees found"
	MsgInsufficientFunds = "Insufficient funds to transfer %s"
	MsgEmployeeNotFound  = "Employee %s not found"

	DescriptionTransfer = "Updated points"

	PasswordSubject = "Your dundie password"
	PasswordBody    = "Your password is: %s"
)

// Deps are the collaborators of a Service. DB and Ledger are required; the
// others fall back to no-op implementations.
type Deps struct {
	DB             *gorm.DB
	Ledger         *ledger.Ledger
	Rates          exchange.Converter
	Mailer         notify.Sender
	Events         events.Publisher
	Hasher         util.PasswordHasher
	PasswordLength int
	MailFrom       string
	Logger         *zap.Logger
}

type Service struct {
	db             *gorm.DB
	ledger         *ledger.Ledger
	rates          exchange.Converter
	mailer         notify.Sender
	events         events.Publisher
	hasher         util.PasswordHasher
	passwordLength int
	mailFrom       string
	log            *zap.Logger

	lookupTarget func(tx *gorm.DB, email string) (*models.Employee, error)
}

func NewService(d Deps) *Service {
	s := &Service{
		db:             d.DB,
		ledger:         d.Ledger,
		rates:          d.Rates,
		mailer:         d.Mailer,
		events:         d.Events,
		hasher:         d.Hasher,
		passwordLength: d.PasswordLength,
		mailFrom:       d.MailFrom,
		log:            d.Logger,
		lookupTarget:   store.FindByEmail,
	}
	if s.rates == nil {
		s.rates = noRates{}
	}
	if s.mailer == nil {
		s.mailer = notify.NopSender{}
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.passwordLength <= 0 {
		s.passwordLength = 8
	}
	if s.mailFrom == "" {
		s.mailFrom = "admin@dundie.com"
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Query selects employees by exact email and/or department.
type Query struct {
	Email      string `form:"email" json:"email"`
	Department string `form:"dept" json:"dept"`
}

func (q Query) filter() store.Filter {
	return store.Filter{Email: q.Email, Department: q.Department}
}

func (s *Service) logger(ctx context.Context) *zap.Logger {
	if l, ok := logger.Lookup(ctx); ok {
		return l
	}
	return s.log
}

// noRates quotes nothing; every non-USD currency gets the sentinel rate.
type noRates struct{}

func (noRates) Rates(_ context.Context, currencies []string) map[string]exchange.Rate {
	out := make(map[string]exchange.Rate, len(currencies))
	for _, c := range currencies {
		if c == exchange.BaseCurrency {
			out[c] = exchange.Rate{Code: c, CodeIn: c, Ask: decimalOne}
			continue
		}
		out[c] = exchange.Rate{Code: exchange.BaseCurrency, CodeIn: c, Name: exchange.APIErrorName}
	}
	return out
}
