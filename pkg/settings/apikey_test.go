package settings

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedKey(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestKeyExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	key := signedKey(t, jwt.MapClaims{"exp": exp.Unix(), "sub": "user"})

	got, ok := KeyExpiry(key)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))
}

func TestKeyExpiry_OpaqueKey(t *testing.T) {
	_, ok := KeyExpiry("br_live_abcdef")
	assert.False(t, ok)

	_, ok = KeyExpiry(signedKey(t, jwt.MapClaims{"sub": "no-exp"}))
	assert.False(t, ok)
}

func TestKeyExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	past := signedKey(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()})
	future := signedKey(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})

	assert.True(t, KeyExpired(past, now))
	assert.False(t, KeyExpired(future, now))
	assert.False(t, KeyExpired("opaque", now))
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "-", MaskKey(""))
	assert.Equal(t, "***", MaskKey("abc"))
	assert.Equal(t, "********wxyz", MaskKey("abcdefwxyz"))
}
