package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/blackroad/cli/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"tasks":[{"id":"a","title":"A","priority":"urgent","status":"pending"},{"id":"b","title":"B","priority":"urgent","status":"pending"}]}`))
	})
	mux.HandleFunc("GET /tasks/stats", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":10,"pending":2}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var err error
	out := captureStdout(t, func() {
		rootCmd.SetArgs(args)
		err = rootCmd.Execute()
	})
	return out, err
}

func TestRoot_CheckRecordsNotifiedTasks(t *testing.T) {
	setupStdoutCapture(t)
	srv := newAPIServer(t)
	dir := t.TempDir()
	t.Setenv(settings.EnvAPIKey, "k1")

	global := []string{
		"--config", filepath.Join(dir, "settings.yaml"),
		"--state", filepath.Join(dir, "state.db"),
		"--api-url", srv.URL,
	}

	out, err := executeRoot(t, append([]string{"check", "-o", "json"}, global...)...)
	require.NoError(t, err)
	var first checkView
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.True(t, first.Notified)
	assert.Equal(t, []string{"a", "b"}, first.NewTaskIDs)
	assert.Equal(t, "2", first.Badge)

	out, err = executeRoot(t, append([]string{"check", "-o", "json"}, global...)...)
	require.NoError(t, err)
	var second checkView
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.False(t, second.Notified)
	assert.Empty(t, second.NewTaskIDs)

	out, err = executeRoot(t, append([]string{"notified", "list", "-o", "json"}, global...)...)
	require.NoError(t, err)
	var ids []string
	require.NoError(t, json.Unmarshal([]byte(out), &ids))
	assert.Equal(t, []string{"a", "b"}, ids)

	out, err = executeRoot(t, append([]string{"badge", "-o", "json"}, global...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"text": "2"`)
}
