package util

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	HasherBcrypt = "bcrypt"
	HasherPBKDF2 = "pbkdf2"

	pbkdf2Iterations = 100_000
)

// PasswordHasher hashes new passwords with the configured algorithm.
// CheckPassword accepts hashes from either algorithm.
type PasswordHasher struct {
	Algorithm  string
	BcryptCost int
}

// Hash returns the stored form of password.
func (h PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}

	switch h.Algorithm {
	case "", HasherBcrypt:
		cost := h.BcryptCost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		return string(hash), nil
	case HasherPBKDF2:
		return hashPBKDF2(password)
	default:
		return "", fmt.Errorf("unknown password hasher %q", h.Algorithm)
	}
}

// hashPBKDF2 produces "salt$hash" using PBKDF2+SHA256.
func hashPBKDF2(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, 32, sha256.New)
	saltStr := base64.RawStdEncoding.EncodeToString(salt)
	hashStr := base64.RawStdEncoding.EncodeToString(hash)

	return saltStr + "$" + hashStr, nil
}

// CheckPassword verifies a plaintext password against a bcrypt or PBKDF2 hash.
func CheckPassword(password, stored string) bool {
	if password == "" || stored == "" {
		return false
	}

	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil || len(expectedHash) == 0 {
		return false
	}

	hash := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, len(expectedHash), sha256.New)
	return subtle.ConstantTimeCompare(hash, expectedHash) == 1
}

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePassword returns a random password of n letters and digits.
func GeneratePassword(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	max := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		buf[i] = passwordAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
