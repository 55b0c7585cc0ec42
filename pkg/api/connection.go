package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MinimumAPIVersion is the oldest server version this client is tested against.
const MinimumAPIVersion = "1.0.0"

// ConnectionOutcome classifies a connection test.
type ConnectionOutcome int

const (
	ConnectionHealthy ConnectionOutcome = iota
	ConnectionDegraded
	ConnectionUnauthorized
	ConnectionMissingKey
	ConnectionFailed
)

func (o ConnectionOutcome) String() string {
	switch o {
	case ConnectionHealthy:
		return "healthy"
	case ConnectionDegraded:
		return "degraded"
	case ConnectionUnauthorized:
		return "unauthorized"
	case ConnectionMissingKey:
		return "missing_key"
	default:
		return "failed"
	}
}

// ConnectionResult is the user-facing result of TestConnection.
type ConnectionResult struct {
	Outcome ConnectionOutcome
	Message string
	Version string
	// Warning is set when the server version is older than MinimumAPIVersion.
	Warning string
	Err     error
}

// OK reports whether the API is reachable and healthy.
func (r ConnectionResult) OK() bool { return r.Outcome == ConnectionHealthy }

// TestConnection checks apiKey against apiURL/health and maps the answer to
// one of the ConnectionOutcome values with a message suitable for display.
func TestConnection(ctx context.Context, apiKey, apiURL string, opts ...Option) ConnectionResult {
	if strings.TrimSpace(apiKey) == "" {
		return ConnectionResult{Outcome: ConnectionMissingKey, Message: "Please enter an API key"}
	}

	client := NewClient(strings.TrimSpace(apiKey), apiURL, opts...)
	health, err := client.Health(ctx)
	if err != nil {
		var apiErr *APIError
		var netErr *NetworkError
		switch {
		case errors.As(err, &apiErr) && apiErr.Unauthorized():
			return ConnectionResult{Outcome: ConnectionUnauthorized, Message: "Invalid API key", Err: err}
		case errors.As(err, &apiErr):
			return ConnectionResult{Outcome: ConnectionFailed, Message: fmt.Sprintf("API error: %d", apiErr.StatusCode), Err: err}
		case errors.As(err, &netErr):
			return ConnectionResult{Outcome: ConnectionFailed, Message: fmt.Sprintf("Connection failed: %v", netErr.Err), Err: err}
		default:
			return ConnectionResult{Outcome: ConnectionFailed, Message: fmt.Sprintf("Connection failed: %v", err), Err: err}
		}
	}

	if !health.Healthy() {
		return ConnectionResult{Outcome: ConnectionDegraded, Message: "API returned unhealthy status", Version: health.Version}
	}

	res := ConnectionResult{
		Outcome: ConnectionHealthy,
		Message: fmt.Sprintf("Connected! API version: %s", health.Version),
		Version: health.Version,
	}
	if older, ok := olderThanMinimum(health.Version); ok && older {
		res.Warning = fmt.Sprintf("API version %s is older than the minimum supported %s", health.Version, MinimumAPIVersion)
	}
	return res
}

// olderThanMinimum compares v against MinimumAPIVersion. ok is false when v is
// not a semantic version.
func olderThanMinimum(v string) (older bool, ok bool) {
	got, err := semver.NewVersion(strings.TrimSpace(v))
	if err != nil {
		return false, false
	}
	min := semver.MustParse(MinimumAPIVersion)
	return got.LessThan(min), true
}
