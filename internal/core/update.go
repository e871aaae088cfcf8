package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dundie-rewards/internal/auth"
	"dundie-rewards/internal/events"
	"dundie-rewards/internal/ledger"
	"dundie-rewards/internal/models"
	"dundie-rewards/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Outcome explains why a transfer was refused. It is returned as a message,
// not an error, and nothing was written.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeNoEmployees
	OutcomeInsufficientFunds
	OutcomeEmployeeNotFound
)

// missingTarget aborts the transfer transaction when a target vanished
// between selection and crediting.
type missingTarget struct {
	email string
}

func (e *missingTarget) Error() string {
	return fmt.Sprintf(MsgEmployeeNotFound, e.email)
}

// Update moves value points from actor to every employee matching q.
// A superuser grants points without being debited; anyone else pays value
// for each credited employee and must hold count(targets)*value up front.
// The returned message is empty on success and describes the refusal
// otherwise. A value finer than ledger.BalancePlaces is an error. The whole transfer commits or rolls back as one unit.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, value decimal.Decimal, q Query) (string, error) {
	msg, _, err := s.Transfer(ctx, actor, value, q)
	return msg, err
}

// Transfer is Update with the refusal reason as an Outcome.
func (s *Service) Transfer(ctx context.Context, actor *auth.Actor, value decimal.Decimal, q Query) (string, Outcome, error) {
	if actor == nil || actor.Employee == nil {
		return "", 0, &auth.AuthenticationError{Reason: "no actor"}
	}
	if err := ledger.CheckPrecision(value); err != nil {
		return "", 0, err
	}
	log := s.logger(ctx).With(zap.String("actor", actor.Email()), zap.String("value", value.String()))

	var (
		outcome   Outcome
		msg       string
		self      *models.Employee
		credited  []string
		reference = uuid.NewString()
		at        = time.Now().UTC()
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		targets, err := store.List(tx, q.filter())
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			outcome, msg = OutcomeNoEmployees, MsgNoEmployees
			return nil
		}

		self, err = store.FindByID(tx, actor.Employee.ID)
		if errors.Is(err, store.ErrNotFound) {
			return &auth.AuthenticationError{Email: actor.Email(), Reason: "unknown employee"}
		}
		if err != nil {
			return err
		}

		totalCost := value.Mul(decimal.NewFromInt(int64(len(targets))))
		if !self.Superuser() && totalCost.GreaterThan(ledger.BalanceOf(self)) {
			outcome, msg = OutcomeInsufficientFunds, fmt.Sprintf(MsgInsufficientFunds, totalCost.String())
			return nil
		}

		for _, t := range targets {
			if t.ID == self.ID {
				continue
			}
			target, err := s.lookupTarget(tx, t.Email)
			if errors.Is(err, store.ErrNotFound) {
				return &missingTarget{email: t.Email}
			}
			if err != nil {
				return err
			}

			credit := ledger.Entry{Value: value, Description: DescriptionTransfer, Actor: self.Email, Reference: reference}
			if err := s.ledger.Post(tx, target, credit); err != nil {
				return err
			}
			if !self.Superuser() {
				debit := ledger.Entry{Value: value.Neg(), Description: DescriptionTransfer, Actor: self.Email, Reference: reference}
				if err := s.ledger.Post(tx, self, debit); err != nil {
					return err
				}
			}
			credited = append(credited, target.Email)
		}
		return nil
	})

	var missing *missingTarget
	if errors.As(err, &missing) {
		log.Warn("transfer rolled back", zap.String("target", missing.email))
		return missing.Error(), OutcomeEmployeeNotFound, nil
	}
	if err != nil {
		return "", 0, err
	}
	if outcome != OutcomeApplied {
		log.Info("transfer refused", zap.String("reason", msg))
		return msg, outcome, nil
	}

	actor.Employee.Balance = self.Balance
	log.Info("transfer applied", zap.String("reference", reference), zap.Int("credited", len(credited)))
	s.publishTransfers(ctx, actor, value, reference, at, credited)
	return "", OutcomeApplied, nil
}

func (s *Service) publishTransfers(ctx context.Context, actor *auth.Actor, value decimal.Decimal, reference string, at time.Time, credited []string) {
	for _, email := range credited {
		ev := events.PointsTransferred{
			Reference: reference,
			From:      actor.Email(),
			To:        email,
			Value:     value,
			Superuser: actor.Superuser(),
			At:        at,
		}
		if err := s.events.Publish(ctx, events.TopicPointsTransferred, ev); err != nil {
			s.logger(ctx).Warn("publish transfer event", zap.String("reference", reference), zap.String("to", email), zap.Error(err))
		}
	}
}

// History returns the transactions of the employee with email, newest first.
// limit <= 0 returns all of them.
func (s *Service) History(ctx context.Context, email string, limit int) ([]models.Transaction, error) {
	db := s.db.WithContext(ctx)
	emp, err := store.FindByEmail(db, email)
	if err != nil {
		return nil, err
	}
	return store.Transactions(db, emp.ID, limit)
}
