package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validEmails = []string{
	"alice@example.com",
	"bob.smith@example.co.uk",
	"charlie123@example.org",
	"david_jones@example.net",
	"eve-adams@example.io",
	"frank@example.edu",
}

var invalidEmails = []string{
	"alice.example.com",
	"bob.smith@.co.uk",
	"david_jones@example",
	"george@com",
	"@example.com",
	"hannah@example..com",
	"kate@",
	"laura",
	"",
}

func TestValidateEmail_Valid(t *testing.T) {
	for _, email := range validEmails {
		assert.NoError(t, ValidateEmail(email), email)
	}
}

func TestValidateEmail_Invalid(t *testing.T) {
	for _, email := range invalidEmails {
		err := ValidateEmail(email)
		require.Error(t, err, email)

		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr), email)
		assert.Equal(t, "email", vErr.Field)
	}
}

type record struct {
	Name     string `validate:"required"`
	Email    string `validate:"dundie_email"`
	Currency string `validate:"omitempty,currency"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(record{Name: "Jim", Email: "jim@co.com", Currency: "EUR"}))
	assert.NoError(t, ValidateStruct(record{Name: "Jim", Email: "jim@co.com"}))

	cases := []struct {
		in    record
		field string
	}{
		{record{Email: "jim@co.com"}, "name"},
		{record{Name: "Jim", Email: "jim@com"}, "email"},
		{record{Name: "Jim", Email: "jim@co.com", Currency: "euro"}, "currency"},
	}
	for _, tc := range cases {
		err := ValidateStruct(tc.in)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr), "%+v", tc.in)
		assert.Equal(t, tc.field, vErr.Field)
	}
}
