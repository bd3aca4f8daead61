package password

import "errors"

// Public, stable errors for callers.
var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrPolicyViolation  = errors.New("password policy violation")
	ErrInvalidHash      = errors.New("invalid password hash")
)
