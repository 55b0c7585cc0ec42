package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/blackroad/cli/pkg/settings"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/require"
)

// outBuf receives pterm output during a test.
var outBuf bytes.Buffer

func setupStdoutCapture(t *testing.T) {
	t.Helper()
	outBuf.Reset()
	pterm.DisableColor()
	pterm.SetDefaultOutput(&outBuf)
	t.Cleanup(func() {
		pterm.SetDefaultOutput(os.Stdout)
		pterm.EnableColor()
	})
}

// captureStdout returns what fn writes to os.Stdout directly.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	t.Cleanup(func() { os.Stdout = old })

	done := make(chan []byte)
	go func() {
		b, _ := io.ReadAll(r)
		done <- b
	}()

	fn()
	_ = w.Close()
	os.Stdout = old
	return string(<-done)
}

// FakeSettingsStore keeps settings in memory.
type FakeSettingsStore struct {
	Current  settings.Settings
	LoadErr  error
	SaveErr  error
	Saved    []settings.Settings
	Cleared  int
	FilePath string
}

func newFakeSettingsStore() *FakeSettingsStore {
	return &FakeSettingsStore{Current: settings.Defaults(), FilePath: "/tmp/blackroad/settings.yaml"}
}

func (f *FakeSettingsStore) Load() (settings.Settings, error) {
	if f.LoadErr != nil {
		return settings.Settings{}, f.LoadErr
	}
	return f.Current, nil
}

func (f *FakeSettingsStore) Save(s settings.Settings) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	s = s.Normalize()
	f.Current = s
	f.Saved = append(f.Saved, s)
	return nil
}

func (f *FakeSettingsStore) Clear() error {
	f.Cleared++
	f.Current.APIKey = ""
	return nil
}

func (f *FakeSettingsStore) Path() string { return f.FilePath }
