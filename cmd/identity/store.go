package identity

import (
	"context"
	"time"
)

// User is Gatehouse's canonical security principal.
//
// Email is stored exactly as given (surrounding whitespace trimmed); lookup is
// case-sensitive byte comparison. PasswordHash is a PHC-encoded Argon2id
// string; plaintext passwords never reach this package.
type User struct {
	ID           string
	Email        string
	PasswordHash string

	CreatedAt time.Time
}

// Store is the user persistence boundary.
//
// Implementations must be safe for concurrent use and must enforce email
// uniqueness (CreateUser returns a ConflictError on a duplicate email).
type Store interface {
	// CreateUser inserts a new user. The caller supplies ID, Email,
	// PasswordHash and CreatedAt.
	CreateUser(ctx context.Context, u User) error

	// GetByEmail returns the user with the exact email, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetByID returns the user with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (User, error)
}
