package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "dundie", 7, "jim@co.com", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.EmployeeID)
	assert.Equal(t, "jim@co.com", claims.Subject)
	assert.Equal(t, "dundie", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "dundie", 7, "jim@co.com", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other", token)
	assert.Error(t, err)
}

func TestGenerateTokenDefaultTTL(t *testing.T) {
	token, err := GenerateToken("secret", "dundie", 7, "jim@co.com", -time.Hour)
	require.NoError(t, err)

	// non-positive ttl falls back to the default lifetime
	_, err = ParseToken("secret", token)
	assert.NoError(t, err)
}
