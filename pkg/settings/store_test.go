package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func noEnv(string) string { return "" }

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	keyring.MockInit()
	path := filepath.Join(t.TempDir(), "blackroad", "settings.yaml")
	return NewStore(path, append([]Option{WithEnv(noEnv)}, opts...)...)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
	assert.False(t, got.HasAPIKey())
	assert.True(t, got.Notifications)
	assert.False(t, got.UrgentOnly)
	assert.Equal(t, DefaultAPIURL, got.APIURL)
}

func TestSaveLoad_KeyGoesToKeyring(t *testing.T) {
	s := newTestStore(t)

	err := s.Save(Settings{
		APIKey:        "  k1  ",
		APIURL:        "https://api.example.test/v1/",
		Notifications: false,
		UrgentOnly:    true,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "k1")
	assert.Contains(t, string(raw), "key_in_keyring: true")

	stored, err := keyring.Get(keyringService, keyringUser)
	require.NoError(t, err)
	assert.Equal(t, "k1", stored)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "k1", got.APIKey)
	assert.Equal(t, "https://api.example.test/v1", got.APIURL)
	assert.False(t, got.Notifications)
	assert.True(t, got.UrgentOnly)
	assert.Equal(t, DefaultCheckInterval, got.CheckInterval)
}

func TestSave_FallsBackToFileWhenKeyringFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	keyring.MockInitWithError(errors.New("no secret service"))
	s := NewStore(path, WithEnv(noEnv))

	require.NoError(t, s.Save(Settings{APIKey: "k2"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "api_key: k2")

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "k2", got.APIKey)
}

func TestSave_BlankURLFallsBackToDefault(t *testing.T) {
	s := newTestStore(t, WithoutKeyring())

	require.NoError(t, s.Save(Settings{APIKey: "k", APIURL: "   "}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, got.APIURL)
	assert.Equal(t, "k", got.APIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvAPIKey: "env-key",
		EnvAPIURL: "http://localhost:8080/v1/",
	}
	s := newTestStore(t, WithoutKeyring(), WithEnv(func(k string) string { return env[k] }))
	require.NoError(t, s.Save(Settings{APIKey: "file-key"}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "env-key", got.APIKey)
	assert.Equal(t, "http://localhost:8080/v1", got.APIURL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o700))
	require.NoError(t, os.WriteFile(s.Path(), []byte("notifications: [oops"), 0o600))

	_, err := s.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings file")
}

func TestClear_RemovesKeyKeepsPreferences(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(Settings{APIKey: "k1", UrgentOnly: true, Notifications: true}))

	require.NoError(t, s.Clear())

	got, err := s.Load()
	require.NoError(t, err)
	assert.False(t, got.HasAPIKey())
	assert.True(t, got.UrgentOnly)
}

func TestWatch_ReportsAPIKeyChange(t *testing.T) {
	s := newTestStore(t, WithoutKeyring())
	require.NoError(t, s.Save(Settings{APIKey: "old", Notifications: true}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		changes [][2]Settings
	)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func(prev, next Settings) {
			mu.Lock()
			changes = append(changes, [2]Settings{prev, next})
			mu.Unlock()
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Save(Settings{APIKey: "new", Notifications: true}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) > 0
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	first := changes[0]
	mu.Unlock()
	assert.Equal(t, "old", first[0].APIKey)
	assert.Equal(t, "new", first[1].APIKey)
	assert.True(t, APIKeyChanged(first[0], first[1]))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

func TestWatch_WaitsForInFlightChangeBeforeReturning(t *testing.T) {
	s := newTestStore(t, WithoutKeyring())
	require.NoError(t, s.Save(Settings{APIKey: "old", Notifications: true}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func(prev, next Settings) {
			once.Do(func() { close(entered) })
			<-release
		})
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Save(Settings{APIKey: "new", Notifications: true}))

	select {
	case <-entered:
	case <-time.After(3 * time.Second):
		t.Fatal("change was not reported")
	}

	cancel()
	select {
	case <-done:
		t.Fatal("watch returned while a change callback was still running")
	case <-time.After(150 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after the callback finished")
	}
}
