package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPassword("Secret1!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1!", hash)

	assert.True(t, CheckPassword("Secret1!", hash))
	assert.False(t, CheckPassword("secret1!", hash))
	assert.False(t, CheckPassword("Secret1!", "not-a-hash"))
}

func TestHashPasswordInvalidCost(t *testing.T) {
	hash, err := HashPassword("Secret1!", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
