// Package auth resolves the acting employee from credentials or a login token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"dundie-rewards/internal/config"
	"dundie-rewards/internal/models"
	"dundie-rewards/internal/store"
	"dundie-rewards/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	EnvEmail    = "EMPLOYEE_EMAIL"
	EnvPassword = "EMPLOYEE_PASSWORD"
)

var ErrAuthentication = errors.New("authentication failed")

// AuthenticationError carries the reason an actor could not be resolved.
// It matches ErrAuthentication with errors.Is.
type AuthenticationError struct {
	Email  string
	Reason string
}

func (e *AuthenticationError) Error() string {
	if e.Email == "" {
		return fmt.Sprintf("authentication failed: %s", e.Reason)
	}
	return fmt.Sprintf("authentication failed for %s: %s", e.Email, e.Reason)
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

type Credentials struct {
	Email    string
	Password string
}

// CredentialsFromEnv reads EMPLOYEE_EMAIL and EMPLOYEE_PASSWORD.
func CredentialsFromEnv() Credentials {
	return Credentials{
		Email:    os.Getenv(EnvEmail),
		Password: os.Getenv(EnvPassword),
	}
}

// Actor is an authenticated employee.
type Actor struct {
	Employee *models.Employee
}

func (a *Actor) Email() string {
	return a.Employee.Email
}

func (a *Actor) Superuser() bool {
	return a.Employee.Superuser()
}

// Balance is the actor's balance as loaded at authentication time.
func (a *Actor) Balance() decimal.Decimal {
	if a.Employee.Balance == nil {
		return decimal.Zero
	}
	return a.Employee.Balance.Value.Decimal
}

// Authenticate checks creds against the stored password hash.
func Authenticate(ctx context.Context, db *gorm.DB, creds Credentials) (*Actor, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return nil, &AuthenticationError{Email: email, Reason: "missing credentials"}
	}

	emp, err := store.FindByEmail(db.WithContext(ctx), email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &AuthenticationError{Email: email, Reason: "unknown employee"}
	}
	if err != nil {
		return nil, err
	}
	if emp.User == nil {
		return nil, &AuthenticationError{Email: email, Reason: "no login for employee"}
	}
	if !util.CheckPassword(creds.Password, emp.User.Password) {
		return nil, &AuthenticationError{Email: email, Reason: "invalid password"}
	}
	return &Actor{Employee: emp}, nil
}

// IssueToken signs a login token for actor.
func IssueToken(cfg config.JWTConfig, actor *Actor) (string, error) {
	if cfg.Secret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	ttl := time.Duration(cfg.ExpireHours) * time.Hour
	return util.GenerateToken(cfg.Secret, cfg.Issuer, actor.Employee.ID, actor.Email(), ttl)
}

// ResolveToken validates a login token and reloads the employee it names.
func ResolveToken(ctx context.Context, db *gorm.DB, secret, token string) (*Actor, error) {
	if token == "" {
		return nil, &AuthenticationError{Reason: "missing token"}
	}
	claims, err := util.ParseToken(secret, token)
	if err != nil {
		return nil, &AuthenticationError{Reason: "invalid token"}
	}

	emp, err := store.FindByID(db.WithContext(ctx), claims.EmployeeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &AuthenticationError{Email: claims.Subject, Reason: "unknown employee"}
	}
	if err != nil {
		return nil, err
	}
	return &Actor{Employee: emp}, nil
}
