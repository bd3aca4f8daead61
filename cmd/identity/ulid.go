package identity

import (
	"time"

	"gatehouse/cmd/identity/ids"
)

// NewULID returns a new ULID (26-char string) used as a user id.
func NewULID(now time.Time) (string, error) {
	return ids.NewULID(now)
}
