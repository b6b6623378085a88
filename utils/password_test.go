package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("hunter2secret")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2secret", hashed)

	assert.True(t, CheckPassword(hashed, "hunter2secret"))
	assert.False(t, CheckPassword(hashed, "wrongpassword"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2secret"))
}
