package util

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailPattern is the address grammar accepted for employee emails.
var emailPattern = regexp.MustCompile(`^[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("dundie_email", func(fl validator.FieldLevel) bool {
		return ValidateEmail(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return currencyPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidationError reports a record that failed field validation.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ValidateEmail checks an address against the employee email grammar.
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Reason: "email is empty"}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Value: email, Reason: "not a valid email address"}
	}
	return nil
}

// ValidateStruct runs the `validate` tags of v. The first failing field is
// returned as a *ValidationError.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}

	fe := fieldErrs[0]
	reason := "failed " + fe.Tag()
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "dundie_email":
		reason = "not a valid email address"
	case "currency":
		reason = "must be a 3-letter currency code"
	}
	return &ValidationError{
		Field:  strings.ToLower(fe.Field()),
		Value:  fmt.Sprint(fe.Value()),
		Reason: reason,
	}
}
