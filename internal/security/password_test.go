package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password123")

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "password123", hash)
}

func TestCheckPassword(t *testing.T) {
	hash, _ := HashPassword("password123")

	assert.NoError(t, CheckPassword(hash, "password123"))
	assert.Error(t, CheckPassword(hash, "wrongpassword"))
}

func TestCheckPassword_NoHash(t *testing.T) {
	assert.ErrorIs(t, CheckPassword("", "anything"), ErrNoPassword)
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	assert.Error(t, CheckPassword("invalidhash", "password123"))
}
