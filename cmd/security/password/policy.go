package password

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Violations returns one human-readable message per violated policy rule.
// An empty slice means the password satisfies the policy.
// Messages are stable: the HTTP layer surfaces them verbatim.
func (c Config) Violations(password string) []string {
	var out []string

	// Count characters (runes), not bytes, to be user-friendly.
	n := utf8.RuneCountInString(password)

	if n < c.Policy.MinLength {
		out = append(out, fmt.Sprintf("Password must be at least %d characters long", c.Policy.MinLength))
	}
	if n > c.Policy.MaxLength {
		out = append(out, fmt.Sprintf("Password must be at most %d characters long", c.Policy.MaxLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if c.Policy.RequireUpper && !hasUpper {
		out = append(out, "Password must contain at least one uppercase letter")
	}
	if c.Policy.RequireLower && !hasLower {
		out = append(out, "Password must contain at least one lowercase letter")
	}
	if c.Policy.RequireDigit && !hasDigit {
		out = append(out, "Password must contain at least one number")
	}
	if c.Policy.RequireSpecial && !hasSpecial {
		out = append(out, "Password must contain at least one special character")
	}

	return out
}

// Validate checks password policy and maps violations to sentinel errors.
// It does not mutate input. Length errors take precedence over composition errors.
func (c Config) Validate(password string) error {
	n := utf8.RuneCountInString(password)

	if n < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if n > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}
	if len(c.Violations(password)) > 0 {
		return ErrPolicyViolation
	}
	return nil
}
