package session

import (
	"context"
	"errors"
	"fmt"

	"gatehouse/cmd/identity"
	"gatehouse/cmd/security/password"
)

// Verifier checks email/password credentials against the user store.
//
// Lookup misses and password mismatches are indistinguishable to callers,
// and a dummy hash is verified on lookup misses so the two paths cost
// roughly the same amount of time.
type Verifier struct {
	users     identity.Store
	passwords password.Config
	dummyHash string
}

// NewVerifier builds a Verifier. The dummy hash is derived once from the
// configured Argon2id parameters.
func NewVerifier(users identity.Store, passwords password.Config) (*Verifier, error) {
	dummy, err := passwords.Hash("gatehouse-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("session: derive dummy hash: %w", err)
	}
	return &Verifier{users: users, passwords: passwords, dummyHash: dummy}, nil
}

// Verify returns the user whose email and password both match, or
// ErrInvalidCredentials.
func (v *Verifier) Verify(ctx context.Context, email, plaintext string) (identity.User, error) {
	u, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if identity.IsNotFound(err) {
			// Burn comparable CPU so an unknown email is not cheaper
			// to probe than a known one.
			_, _ = v.passwords.Verify(v.dummyHash, plaintext)
			return identity.User{}, ErrInvalidCredentials
		}
		return identity.User{}, err
	}

	ok, err := v.passwords.Verify(u.PasswordHash, plaintext)
	if err != nil {
		if errors.Is(err, password.ErrInvalidHash) {
			return identity.User{}, ErrInvalidCredentials
		}
		return identity.User{}, err
	}
	if !ok {
		return identity.User{}, ErrInvalidCredentials
	}
	return u, nil
}
