package authapi

import (
	"os"
	"strconv"
	"strings"
)

// Config controls auth API behavior and cookie security defaults.
type Config struct {
	// RefreshCookieName is the cookie carrying the refresh token.
	RefreshCookieName string

	// CookiePath scopes the refresh cookie so browsers only attach it to
	// the refresh endpoint.
	CookiePath string

	// CookieDomain is optional; empty means host-only.
	CookieDomain string

	// CookieSecure must be true outside development.
	CookieSecure bool

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64
}

// LoadConfigFromEnv loads auth API config from environment variables with
// safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		RefreshCookieName: envString("GATEHOUSE_AUTH_COOKIE_NAME", "jid"),
		CookiePath:        envString("GATEHOUSE_AUTH_COOKIE_PATH", "/api/auth/refresh"),
		CookieDomain:      envString("GATEHOUSE_AUTH_COOKIE_DOMAIN", ""),
		CookieSecure:      envBool("GATEHOUSE_AUTH_COOKIE_SECURE", true),
		MaxBodyBytes:      envInt64("GATEHOUSE_AUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
	}

	if cfg.RefreshCookieName == "" {
		cfg.RefreshCookieName = "jid"
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/api/auth/refresh"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	return cfg
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
