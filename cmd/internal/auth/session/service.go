package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gatehouse/cmd/identity"
	"gatehouse/cmd/security/password"
	"gatehouse/cmd/security/token"
)

// Issued is a freshly minted access/refresh token pair.
type Issued struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// ValidationError carries the per-rule messages for a rejected registration
// input. Messages are safe to return to the client.
type ValidationError struct {
	Messages []string
}

func (e ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Service drives the session lifecycle over a user store, a refresh-token
// ledger, and a token codec.
type Service struct {
	users     identity.Store
	verifier  *Verifier
	ledger    Ledger
	codec     *token.Codec
	passwords password.Config
	cfg       Config
	logger    *slog.Logger
}

// NewService wires a Service. logger may be nil, in which case the default
// logger is used.
func NewService(
	users identity.Store,
	ledger Ledger,
	codec *token.Codec,
	passwords password.Config,
	cfg Config,
	logger *slog.Logger,
) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	verifier, err := NewVerifier(users, passwords)
	if err != nil {
		return nil, err
	}

	return &Service{
		users:     users,
		verifier:  verifier,
		ledger:    ledger,
		codec:     codec,
		passwords: passwords,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Register creates a new account and signs it in. The email is trimmed but
// otherwise stored as given; the password must satisfy the composition
// policy.
func (s *Service) Register(ctx context.Context, email, plaintext string, now time.Time) (identity.User, Issued, error) {
	email = identity.CanonicalEmail(email)

	var msgs []string
	if !identity.ValidEmail(email) {
		msgs = append(msgs, "Invalid email address")
	}
	msgs = append(msgs, s.passwords.Violations(plaintext)...)
	if len(msgs) > 0 {
		return identity.User{}, Issued{}, ValidationError{Messages: msgs}
	}

	hash, err := s.passwords.Hash(plaintext)
	if err != nil {
		return identity.User{}, Issued{}, fmt.Errorf("session: hash password: %w", err)
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return identity.User{}, Issued{}, fmt.Errorf("session: new user id: %w", err)
	}

	u := identity.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now.UTC(),
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.users.CreateUser(sctx, u); err != nil {
		if identity.IsConflict(err) {
			return identity.User{}, Issued{}, ErrEmailTaken
		}
		return identity.User{}, Issued{}, s.storeErr("create user", err)
	}

	issued, err := s.issuePair(u.ID, now)
	if err != nil {
		return identity.User{}, Issued{}, err
	}

	actx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.ledger.Add(actx, u.ID, issued.RefreshToken, issued.RefreshExpiresAt, now); err != nil {
		return identity.User{}, Issued{}, s.storeErr("record refresh token", err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", u.ID))
	return u, issued, nil
}

// Login verifies credentials and, on success, issues a token pair and
// records the refresh token in the ledger.
func (s *Service) Login(ctx context.Context, email, plaintext string, now time.Time) (identity.User, Issued, error) {
	email = identity.CanonicalEmail(email)

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	u, err := s.verifier.Verify(sctx, email, plaintext)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return identity.User{}, Issued{}, ErrInvalidCredentials
		}
		return identity.User{}, Issued{}, s.storeErr("verify credentials", err)
	}

	issued, err := s.issuePair(u.ID, now)
	if err != nil {
		return identity.User{}, Issued{}, err
	}

	actx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.ledger.Add(actx, u.ID, issued.RefreshToken, issued.RefreshExpiresAt, now); err != nil {
		return identity.User{}, Issued{}, s.storeErr("record refresh token", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", u.ID))
	return u, issued, nil
}

// Refresh rotates the presented refresh token: the old token leaves the
// ledger and a fresh pair is issued in one atomic swap. A token that fails
// signature or expiry checks, or that is no longer in the ledger (already
// rotated, or revoked by logout), is rejected with ErrInvalidRefresh.
func (s *Service) Refresh(ctx context.Context, raw string, now time.Time) (Issued, error) {
	claims, err := s.codec.Verify(token.KindRefresh, raw, now)
	if err != nil {
		return Issued{}, ErrInvalidRefresh
	}

	issued, err := s.issuePair(claims.UserID, now)
	if err != nil {
		return Issued{}, err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	err = s.ledger.Replace(sctx, claims.UserID, raw, issued.RefreshToken, issued.RefreshExpiresAt, now)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			s.logger.WarnContext(ctx, "auth.refresh.replay",
				slog.String("user_id", claims.UserID))
			return Issued{}, ErrRefreshReplayed
		}
		return Issued{}, s.storeErr("rotate refresh token", err)
	}

	return issued, nil
}

// Logout revokes the presented refresh token for userID. Revoking a token
// that is already gone is not an error; logout is idempotent.
func (s *Service) Logout(ctx context.Context, userID, raw string) error {
	if raw == "" {
		return nil
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	err := s.ledger.Remove(sctx, userID, raw)
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		return s.storeErr("revoke refresh token", err)
	}

	s.logger.InfoContext(ctx, "user logged out", slog.String("user_id", userID))
	return nil
}

func (s *Service) issuePair(userID string, now time.Time) (Issued, error) {
	access, accessExp, err := s.codec.Issue(token.KindAccess, userID, now)
	if err != nil {
		return Issued{}, fmt.Errorf("session: issue access token: %w", err)
	}
	refresh, refreshExp, err := s.codec.Issue(token.KindRefresh, userID, now)
	if err != nil {
		return Issued{}, fmt.Errorf("session: issue refresh token: %w", err)
	}
	return Issued{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// storeErr maps deadline and cancellation failures onto ErrStoreUnavailable
// so transport code can answer 503 without inspecting driver errors.
func (s *Service) storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
	}
	return fmt.Errorf("session: %s: %w", op, err)
}
