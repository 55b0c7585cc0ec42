package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackroad/cli/pkg/logx"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

const (
	keyringService = "blackroad"
	keyringUser    = "api-key"
)

// fileSettings is the on-disk YAML layout.
type fileSettings struct {
	APIKey        string        `yaml:"api_key,omitempty"`
	APIURL        string        `yaml:"api_url,omitempty"`
	Notifications *bool         `yaml:"notifications,omitempty"`
	UrgentOnly    bool          `yaml:"urgent_only,omitempty"`
	CheckInterval time.Duration `yaml:"check_interval,omitempty"`
	PruneNotified *bool         `yaml:"prune_notified,omitempty"`
	// KeyInKeyring marks that the API key was stored in the OS keyring.
	KeyInKeyring bool `yaml:"key_in_keyring,omitempty"`
}

// Store loads and saves Settings.
type Store struct {
	path       string
	useKeyring bool
	getenv     func(string) string
	log        logx.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithoutKeyring keeps the API key in the settings file.
func WithoutKeyring() Option {
	return func(s *Store) { s.useKeyring = false }
}

// WithEnv replaces os.Getenv for override lookups.
func WithEnv(getenv func(string) string) Option {
	return func(s *Store) { s.getenv = getenv }
}

// WithLogger sets the store logger.
func WithLogger(log logx.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore returns a store backed by the YAML file at path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:       path,
		useKeyring: true,
		getenv:     os.Getenv,
		log:        logx.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DefaultPath returns $XDG_CONFIG_HOME/blackroad/settings.yaml (or the OS equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "blackroad", "settings.yaml"), nil
}

// Path returns the settings file path.
func (s *Store) Path() string { return s.path }

// Load returns the persisted settings with environment overrides applied.
// A missing file yields Defaults.
func (s *Store) Load() (Settings, error) {
	fsett, err := s.readFile()
	if err != nil {
		return Settings{}, err
	}

	out := Defaults()
	out.APIKey = fsett.APIKey
	if fsett.APIURL != "" {
		out.APIURL = fsett.APIURL
	}
	if fsett.Notifications != nil {
		out.Notifications = *fsett.Notifications
	}
	out.UrgentOnly = fsett.UrgentOnly
	if fsett.CheckInterval > 0 {
		out.CheckInterval = fsett.CheckInterval
	}
	if fsett.PruneNotified != nil {
		out.PruneNotified = *fsett.PruneNotified
	}

	if fsett.KeyInKeyring && s.useKeyring {
		key, err := keyring.Get(keyringService, keyringUser)
		switch {
		case err == nil:
			out.APIKey = key
		case errors.Is(err, keyring.ErrNotFound):
			out.APIKey = ""
		default:
			s.log.Warn("keyring read failed", logx.Err(err))
		}
	}

	if v := strings.TrimSpace(s.getenv(EnvAPIKey)); v != "" {
		out.APIKey = v
	}
	if v := strings.TrimSpace(s.getenv(EnvAPIURL)); v != "" {
		out.APIURL = v
	}
	return out.Normalize(), nil
}

// Save persists in. The file is always rewritten so watchers observe the change
// even when only the keyring entry differs.
func (s *Store) Save(in Settings) error {
	in = in.Normalize()

	notifications := in.Notifications
	prune := in.PruneNotified
	fsett := fileSettings{
		APIURL:        in.APIURL,
		Notifications: &notifications,
		UrgentOnly:    in.UrgentOnly,
		CheckInterval: in.CheckInterval,
		PruneNotified: &prune,
	}

	if s.useKeyring {
		if err := s.saveKey(in.APIKey); err != nil {
			s.log.Warn("keyring unavailable; storing API key in settings file", logx.Err(err))
			fsett.APIKey = in.APIKey
		} else {
			fsett.KeyInKeyring = true
		}
	} else {
		fsett.APIKey = in.APIKey
	}

	return s.writeFile(fsett)
}

// Clear removes the stored API key, keeping the other settings.
func (s *Store) Clear() error {
	cur, err := s.Load()
	if err != nil {
		return err
	}
	cur.APIKey = ""
	return s.Save(cur)
}

func (s *Store) saveKey(key string) error {
	if key == "" {
		err := keyring.Delete(keyringService, keyringUser)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return err
		}
		return nil
	}
	return keyring.Set(keyringService, keyringUser, key)
}

func (s *Store) readFile() (fileSettings, error) {
	var fsett fileSettings
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fsett, nil
	}
	if err != nil {
		return fsett, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.Unmarshal(b, &fsett); err != nil {
		return fsett, fmt.Errorf("invalid settings file %s: %w", s.path, err)
	}
	return fsett, nil
}

func (s *Store) writeFile(fsett fileSettings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	b, err := yaml.Marshal(&fsett)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	// Write in place so a directory watcher sees a single write on the file.
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
