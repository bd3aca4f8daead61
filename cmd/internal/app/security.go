package app

import (
	"errors"

	authapi "gatehouse/cmd/internal/auth/api"
)

// ValidateSecurityConfig enforces the startup security policy.
//
// Fail-fast is intentional: serving refresh cookies over plain HTTP in
// production must stop the process, not log a warning.
func ValidateSecurityConfig(cfg Config, apiCfg authapi.Config) error {
	if cfg.IsDevelopment() {
		return nil
	}

	if !apiCfg.CookieSecure {
		return errors.New("security policy: GATEHOUSE_AUTH_COOKIE_SECURE must be true outside development")
	}

	return nil
}
