package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blackroad/cli/pkg/api"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyTester(calls *[]string) ConnectionTester {
	return func(_ context.Context, apiKey, apiURL string) api.ConnectionResult {
		*calls = append(*calls, apiKey+"@"+apiURL)
		return api.ConnectionResult{Outcome: api.ConnectionHealthy, Message: "Connected! API version: 1.4.0", Version: "1.4.0"}
	}
}

func TestLogin_SavesKeyAndTestsConnection(t *testing.T) {
	setupStdoutCapture(t)
	store := newFakeSettingsStore()
	var calls []string

	c := LoginCmd{store: store, test: healthyTester(&calls)}
	err := c.Run(context.Background(), LoginInput{APIKey: "  br_live_abcdef123456  "})
	require.NoError(t, err)

	assert.Equal(t, "br_live_abcdef123456", store.Current.APIKey)
	assert.Equal(t, []string{"br_live_abcdef123456@https://api.blackroad.io/v1"}, calls)
	out := outBuf.String()
	assert.Contains(t, out, "********3456")
	assert.NotContains(t, out, "br_live_abcdef123456")
	assert.Contains(t, out, "Connected! API version: 1.4.0")
}

func TestLogin_PromptsWhenNoKeyGiven(t *testing.T) {
	setupStdoutCapture(t)
	store := newFakeSettingsStore()
	prompted := false

	c := LoginCmd{
		store: store,
		prompt: func() (string, error) {
			prompted = true
			return "prompted-key", nil
		},
	}
	require.NoError(t, c.Run(context.Background(), LoginInput{SkipVerify: true}))
	assert.True(t, prompted)
	assert.Equal(t, "prompted-key", store.Current.APIKey)
}

func TestLogin_BlankKeyRejected(t *testing.T) {
	setupStdoutCapture(t)
	store := newFakeSettingsStore()

	c := LoginCmd{store: store, prompt: func() (string, error) { return "   ", nil }}
	err := c.Run(context.Background(), LoginInput{})
	require.Error(t, err)
	assert.Empty(t, store.Saved)
}

func TestLogin_InvalidKeyReportsError(t *testing.T) {
	setupStdoutCapture(t)
	store := newFakeSettingsStore()

	c := LoginCmd{
		store: store,
		test: func(context.Context, string, string) api.ConnectionResult {
			return api.ConnectionResult{Outcome: api.ConnectionUnauthorized, Message: "Invalid API key"}
		},
	}
	err := c.Run(context.Background(), LoginInput{APIKey: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
	assert.Contains(t, outBuf.String(), "Invalid API key")
	// The key is kept so the user can fix the URL without re-entering it.
	assert.Equal(t, "bad", store.Current.APIKey)
}

func TestLogin_SaveFailure(t *testing.T) {
	setupStdoutCapture(t)
	store := newFakeSettingsStore()
	store.SaveErr = errors.New("read-only file system")

	c := LoginCmd{store: store}
	err := c.Run(context.Background(), LoginInput{APIKey: "k1", SkipVerify: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only file system")
}

func TestLogin_WarnsOnExpiredJWT(t *testing.T) {
	setupStdoutCapture(t)
	store := newFakeSettingsStore()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()})
	key, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	c := LoginCmd{store: store, now: func() time.Time { return now }}
	require.NoError(t, c.Run(context.Background(), LoginInput{APIKey: key, SkipVerify: true}))
	assert.Contains(t, outBuf.String(), "expired")
}

func TestLogout_ClearsKey(t *testing.T) {
	setupStdoutCapture(t)
	store := newFakeSettingsStore()
	store.Current.APIKey = "k1"

	require.NoError(t, LogoutCmd{store: store}.Run(context.Background()))
	assert.Equal(t, 1, store.Cleared)
	assert.Empty(t, store.Current.APIKey)
}
