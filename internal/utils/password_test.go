package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", 4) // min cost keeps the test fast
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, VerifyPassword(hash, "correct horse"))
	// Comparisons are exact; no trimming or case folding.
	assert.False(t, VerifyPassword(hash, "Correct horse"))
	assert.False(t, VerifyPassword(hash, "correct horse "))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestVerifyPasswordBadHash(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "anything"))
}
