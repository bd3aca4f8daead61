package session

import (
	"context"
	"time"
)

// Ledger records the refresh tokens currently honored for each user. Tokens
// are stored verbatim; a token that verifies cryptographically but is absent
// from the ledger is dead (rotated away or revoked by logout).
//
// Implementations must be safe for concurrent use. Replace must be atomic:
// when several callers present the same old token concurrently, exactly one
// succeeds and the rest get ErrTokenNotFound.
type Ledger interface {
	// Add records token for userID until expiresAt.
	Add(ctx context.Context, userID, token string, expiresAt, now time.Time) error

	// Remove drops token from userID's set. Removing an absent token
	// returns ErrTokenNotFound.
	Remove(ctx context.Context, userID, token string) error

	// Contains reports whether token is currently live for userID.
	// Expired tokens are never reported as live.
	Contains(ctx context.Context, userID, token string, now time.Time) (bool, error)

	// Replace atomically swaps old for next in userID's set. If old is not
	// live, nothing changes and ErrTokenNotFound is returned.
	Replace(ctx context.Context, userID, old, next string, nextExpiresAt, now time.Time) error
}
