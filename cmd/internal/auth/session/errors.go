package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned by Login when the email is unknown
	// or the password does not match. Callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned by Register when the email already has an
	// account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidRefresh is returned by Refresh when the presented token is
	// malformed, tampered with, expired, or absent from the ledger.
	ErrInvalidRefresh = errors.New("invalid refresh token")

	// ErrRefreshReplayed is an ErrInvalidRefresh whose token verified
	// cryptographically but was absent from the ledger: already rotated or
	// revoked. Clients see the same rejection; only observability differs.
	ErrRefreshReplayed = fmt.Errorf("%w: replayed or revoked", ErrInvalidRefresh)

	// ErrTokenNotFound is returned by ledger operations that target a token
	// the ledger does not hold.
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrStoreUnavailable is returned when a backing store cannot be
	// reached within the configured timeout.
	ErrStoreUnavailable = errors.New("session store unavailable")

	// ErrConfig indicates invalid session configuration.
	ErrConfig = errors.New("invalid session config")
)
