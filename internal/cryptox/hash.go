package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashSecret returns a salted bcrypt hash of secret at the given cost.
// Used for challenge answers and login password verifiers.
func HashSecret(secret string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CompareSecret reports whether secret matches hash. A malformed hash is
// reported as an error, a plain mismatch as (false, nil).
func CompareSecret(hash, secret string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
