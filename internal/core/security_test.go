// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	passwords := []string{"Customer123+", "correct horse battery staple", "ünïcødé-pässwörd"}

	for _, pw := range passwords {
		hash, err := HashPassword(pw)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
		assert.NotContains(t, hash, pw)

		ok, err := VerifyPassword(pw, hash)
		require.NoError(t, err)
		assert.True(t, ok, "original plaintext must verify")

		ok, err = VerifyPassword(pw+"x", hash)
		require.NoError(t, err)
		assert.False(t, ok, "different plaintext must not verify")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", "not-a-hash")
	assert.Error(t, err)

	_, err = VerifyPassword("anything", "$bcrypt$v=1$m=1,t=1,p=1$c2FsdA$aGFzaA")
	assert.Error(t, err)
}

func TestVerifyPasswordTimingSafeWithoutHash(t *testing.T) {
	ok, newHash, err := VerifyPasswordTimingSafe("whatever", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, newHash)

	empty := ""
	ok, _, err = VerifyPasswordTimingSafe("whatever", &empty)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordTimingSafeWithHash(t *testing.T) {
	hash, err := HashPassword("Secret123!")
	require.NoError(t, err)

	ok, newHash, err := VerifyPasswordTimingSafe("Secret123!", &hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, newHash, "current parameters need no rehash")
}

func TestVerifyPasswordTimingSafeUpgradesStaleHash(t *testing.T) {
	old := CurrentArgonParams
	old.Time = 2

	stale, err := hashWith("Secret123!", old)
	require.NoError(t, err)

	ok, upgraded, err := VerifyPasswordTimingSafe("Secret123!", &stale)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, upgraded)
	assert.Contains(t, upgraded, "t=1,")

	ok, err = VerifyPassword("Secret123!", upgraded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMalformedHashIsTyped(t *testing.T) {
	_, err := VerifyPassword("x", "$argon2id$v=19$garbage$AA$AA")
	assert.ErrorIs(t, err, ErrMalformedHash)
}
