package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ============ password hashing ============

func TestHashPasswordBcrypt(t *testing.T) {
	h := PasswordHasher{Algorithm: HasherBcrypt, BcryptCost: bcrypt.MinCost}

	hashed, err := h.Hash("MyPassword123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "$2"))

	hashed2, err := h.Hash("MyPassword123")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, hashed2, "salt must differ")

	_, err = h.Hash("")
	assert.Error(t, err)
}

func TestHashPasswordPBKDF2(t *testing.T) {
	h := PasswordHasher{Algorithm: HasherPBKDF2}

	hashed, err := h.Hash("MyPassword123")
	require.NoError(t, err)
	assert.Len(t, strings.Split(hashed, "$"), 2)
}

func TestHashPasswordUnknownAlgorithm(t *testing.T) {
	_, err := PasswordHasher{Algorithm: "md5"}.Hash("secret")
	assert.Error(t, err)
}

func TestCheckPassword(t *testing.T) {
	for _, algo := range []string{HasherBcrypt, HasherPBKDF2} {
		h := PasswordHasher{Algorithm: algo, BcryptCost: bcrypt.MinCost}
		hashed, err := h.Hash("TestPass456")
		require.NoError(t, err, algo)

		assert.True(t, CheckPassword("TestPass456", hashed), algo)
		assert.False(t, CheckPassword("WrongPass", hashed), algo)
		assert.False(t, CheckPassword("", hashed), algo)
	}

	assert.False(t, CheckPassword("TestPass456", ""))
	assert.False(t, CheckPassword("TestPass456", "invalid-format"))
	assert.False(t, CheckPassword("TestPass456", "a$b$c"))
}

// ============ random strings ============

func TestGeneratePassword(t *testing.T) {
	pw, err := GeneratePassword(8)
	require.NoError(t, err)
	assert.Len(t, pw, 8)
	for _, ch := range pw {
		assert.Contains(t, passwordAlphabet, string(ch))
	}

	pw2, err := GeneratePassword(8)
	require.NoError(t, err)
	assert.NotEqual(t, pw, pw2)

	_, err = GeneratePassword(0)
	assert.Error(t, err)
}
