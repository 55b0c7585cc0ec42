package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blackroad/cli/pkg/api"
	"github.com/blackroad/cli/pkg/settings"
)

// maxErrorBody is the number of characters of an API error body kept for display.
const maxErrorBody = 200

// CleanedUpAPIError renders API and configuration errors as one readable line.
type CleanedUpAPIError struct {
	Err error
}

func (e CleanedUpAPIError) Error() string {
	var apiErr *api.APIError
	var netErr *api.NetworkError
	switch {
	case errors.Is(e.Err, settings.ErrConfigMissing):
		return "not logged in: run 'blackroad login' first"
	case errors.As(e.Err, &apiErr) && apiErr.Unauthorized():
		return "invalid API key: run 'blackroad login' to replace it"
	case errors.As(e.Err, &apiErr):
		body := strings.TrimSpace(apiErr.Body)
		if r := []rune(body); len(r) > maxErrorBody {
			body = string(r[:maxErrorBody]) + "..."
		}
		if body == "" {
			return fmt.Sprintf("API error (%d)", apiErr.StatusCode)
		}
		return fmt.Sprintf("API error (%d): %s", apiErr.StatusCode, body)
	case errors.As(e.Err, &netErr):
		return fmt.Sprintf("could not reach the BlackRoad API: %v", netErr.Err)
	default:
		return e.Err.Error()
	}
}

func (e CleanedUpAPIError) Unwrap() error { return e.Err }
