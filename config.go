package goTokens

import (
	"time"

	"github.com/MrEthical07/goTokens/token"
)

// Config carries the engine's read-only inputs. It is loaded once before
// Build and never mutated afterwards; the signing secret in particular is
// injected here explicitly instead of living in ambient process state, so
// multiple engines with different keys can coexist (key rotation).
type Config struct {
	// SecretBase64 is the base64-encoded symmetric signing secret.
	SecretBase64 string
	// SigningMethod selects the HMAC-SHA variant; defaults to HS256.
	SigningMethod token.SigningMethod
	// AccessTokenTTL is the access-token lifetime. Expected to be shorter
	// than RefreshTokenTTL, though that is not enforced.
	AccessTokenTTL time.Duration
	// RefreshTokenTTL is the refresh-token lifetime and, therefore, the
	// session lifetime.
	RefreshTokenTTL time.Duration
	// Metrics toggles the in-process counter registry.
	Metrics MetricsConfig
	// Cleanup configures the expired-session sweep interval used by
	// [Engine.NewJanitor].
	Cleanup CleanupConfig
}

// MetricsConfig toggles counter collection.
type MetricsConfig struct {
	Enabled bool
}

// CleanupConfig controls the Janitor.
type CleanupConfig struct {
	Interval time.Duration
}

const defaultCleanupInterval = time.Hour

func (c CleanupConfig) interval() time.Duration {
	if c.Interval <= 0 {
		return defaultCleanupInterval
	}
	return c.Interval
}
