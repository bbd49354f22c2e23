package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Secret123!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	require.NoError(t, ComparePassword(hash, "Secret123!"))
	require.Error(t, ComparePassword(hash, "secret123!"))
	require.Error(t, ComparePassword(hash, ""))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	first, err := HashPassword("Secret123!", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("Secret123!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestComparePassword_RejectsNonHash(t *testing.T) {
	require.Error(t, ComparePassword("not-a-bcrypt-hash", "Secret123!"))
}

func TestDummyCompare_DoesNotPanic(t *testing.T) {
	DummyCompare("anything")
	DummyCompare("")
}
