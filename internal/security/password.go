package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost matches the hashes already stored by the previous deployment.
const Cost = 10

var ErrNoPassword = errors.New("account has no password")

// HashPassword salts and hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a stored hash with a plaintext password.
// Federated accounts have no hash and never match.
func CheckPassword(hash, plain string) error {
	if hash == "" {
		return ErrNoPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
