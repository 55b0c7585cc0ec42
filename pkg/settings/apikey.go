package settings

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeyExpiry returns the expiry of a JWT-shaped API key. Opaque keys and keys
// without an exp claim report ok=false. The signature is not verified; the
// server remains the authority on validity.
func KeyExpiry(apiKey string) (exp time.Time, ok bool) {
	apiKey = strings.TrimSpace(apiKey)
	if strings.Count(apiKey, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(apiKey, claims); err != nil {
		return time.Time{}, false
	}
	t, err := claims.GetExpirationTime()
	if err != nil || t == nil {
		return time.Time{}, false
	}
	return t.Time, true
}

// KeyExpired reports whether apiKey carries an exp claim in the past.
func KeyExpired(apiKey string, now time.Time) bool {
	exp, ok := KeyExpiry(apiKey)
	return ok && !exp.After(now)
}

// MaskKey hides all but the last four characters of a key for display.
func MaskKey(apiKey string) string {
	if apiKey == "" {
		return "-"
	}
	if len(apiKey) <= 4 {
		return strings.Repeat("*", len(apiKey))
	}
	return strings.Repeat("*", 8) + apiKey[len(apiKey)-4:]
}
