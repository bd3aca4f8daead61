package identity

import (
	"net/mail"
	"strings"
)

// CanonicalEmail trims surrounding whitespace and nothing else.
//
// Email comparison is deliberately case-sensitive: two registrations that
// differ only in case are distinct accounts.
func CanonicalEmail(s string) string {
	return strings.TrimSpace(s)
}

// ValidEmail reports whether s is a single well-formed address
// (RFC 5322 addr-spec, no display name, no angle brackets).
func ValidEmail(s string) bool {
	s = CanonicalEmail(s)
	if s == "" {
		return false
	}

	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject display-name forms like `Bob <bob@example.com>`.
	return addr.Address == s
}
