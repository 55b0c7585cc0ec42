// Package settings persists the account-wide CLI settings: API credentials,
// base URL and notification preferences.
//
// Non-secret fields live in a YAML file under the user config dir. The API key
// goes to the OS keyring when one is available and falls back to the file
// otherwise. BLACKROAD_API_KEY and BLACKROAD_API_URL override both.
package settings

import (
	"errors"
	"strings"
	"time"
)

const (
	DefaultAPIURL        = "https://api.blackroad.io/v1"
	DefaultConsoleURL    = "https://console.blackroad.io"
	DefaultCheckInterval = 5 * time.Minute

	EnvAPIKey = "BLACKROAD_API_KEY"
	EnvAPIURL = "BLACKROAD_API_URL"
)

// ErrConfigMissing reports that no API key is configured.
var ErrConfigMissing = errors.New("no API key configured")

// Settings is the user's configuration as seen by every other component.
type Settings struct {
	APIKey        string
	APIURL        string
	Notifications bool
	UrgentOnly    bool
	CheckInterval time.Duration
	// PruneNotified drops notified task ids that are no longer pending remotely.
	PruneNotified bool
}

// Defaults returns the settings used before anything has been saved.
func Defaults() Settings {
	return Settings{
		APIURL:        DefaultAPIURL,
		Notifications: true,
		CheckInterval: DefaultCheckInterval,
	}
}

// HasAPIKey reports whether a non-blank API key is configured.
func (s Settings) HasAPIKey() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

// Normalize trims the key and URL and fills blank fields with defaults.
func (s Settings) Normalize() Settings {
	s.APIKey = strings.TrimSpace(s.APIKey)
	s.APIURL = NormalizeURL(s.APIURL)
	if s.CheckInterval <= 0 {
		s.CheckInterval = DefaultCheckInterval
	}
	return s
}

// NormalizeURL trims whitespace and trailing slashes; blank becomes DefaultAPIURL.
func NormalizeURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	if u == "" {
		return DefaultAPIURL
	}
	return u
}

// Provider is the read accessor handed to components that need settings.
type Provider interface {
	Load() (Settings, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() (Settings, error)

func (f ProviderFunc) Load() (Settings, error) { return f() }

// Static returns a Provider that always yields s.
func Static(s Settings) Provider {
	return ProviderFunc(func() (Settings, error) { return s, nil })
}
