package token

import (
	"crypto/subtle"
	"os"
	"strings"
	"time"
)

// minSecretBytes is the minimum byte length accepted for an HS256 signing key.
const minSecretBytes = 32

// Config defines runtime configuration for the token codec.
//
// Access and refresh secrets MUST differ: the whole point of split keys is
// that an access token can never pass refresh verification and vice versa.
type Config struct {
	// Issuer is the value set in the "iss" claim of every token.
	Issuer string

	// AccessSecret signs access tokens.
	AccessSecret []byte
	// RefreshSecret signs refresh tokens.
	RefreshSecret []byte

	// AccessTTL is the access-token lifetime.
	AccessTTL time.Duration
	// RefreshTTL is the refresh-token lifetime.
	RefreshTTL time.Duration
}

// DefaultConfig returns defaults suitable for development.
// Secrets are intentionally empty: they must always be provided explicitly.
func DefaultConfig() Config {
	return Config{
		Issuer:     "gatehouse",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

// LoadConfigFromEnv loads codec configuration from environment variables.
// Returns ErrConfig when secrets are missing, too short, equal, or TTLs invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("GATEHOUSE_AUTH_ISSUER")); v != "" {
		cfg.Issuer = v
	}

	if v := strings.TrimSpace(os.Getenv("GATEHOUSE_ACCESS_TOKEN_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTTL = d
	}

	if v := strings.TrimSpace(os.Getenv("GATEHOUSE_REFRESH_TOKEN_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTTL = d
	}

	cfg.AccessSecret = []byte(strings.TrimSpace(os.Getenv("GATEHOUSE_ACCESS_TOKEN_SECRET")))
	cfg.RefreshSecret = []byte(strings.TrimSpace(os.Getenv("GATEHOUSE_REFRESH_TOKEN_SECRET")))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.AccessSecret) < minSecretBytes || len(c.RefreshSecret) < minSecretBytes {
		return ErrConfig
	}
	if len(c.AccessSecret) == len(c.RefreshSecret) &&
		subtle.ConstantTimeCompare(c.AccessSecret, c.RefreshSecret) == 1 {
		return ErrConfig
	}
	if c.Issuer == "" || c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return ErrConfig
	}
	return nil
}
