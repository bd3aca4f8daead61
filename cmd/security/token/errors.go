package token

import "errors"

// Public, stable errors for callers.
var (
	// ErrTokenInvalid is returned when a token fails signature, issuer,
	// or structural validation.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned when a well-formed, correctly signed
	// token is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrConfig is returned for invalid codec configuration.
	ErrConfig = errors.New("invalid token config")
)
