package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the Postgres ledger needs. It exists so
// tests can substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ DB = (*pgxpool.Pool)(nil)

// PostgresLedger persists refresh tokens in the gatehouse.refresh_tokens
// table. Atomicity of Replace rests on the row lock the DELETE takes: of
// several transactions deleting the same (user_id, token) row, exactly one
// observes an affected row.
type PostgresLedger struct {
	db         DB
	maxPerUser int
}

// NewPostgresLedger wraps db as a Ledger. maxPerUser of zero means
// unbounded.
func NewPostgresLedger(db DB, maxPerUser int) *PostgresLedger {
	return &PostgresLedger{db: db, maxPerUser: maxPerUser}
}

func (l *PostgresLedger) Add(ctx context.Context, userID, token string, expiresAt, now time.Time) error {
	const q = `
		INSERT INTO gatehouse.refresh_tokens (user_id, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, token) DO NOTHING
	`
	if _, err := l.db.Exec(ctx, q, userID, token, now, expiresAt); err != nil {
		return fmt.Errorf("session: add refresh token: %w", err)
	}

	if l.maxPerUser > 0 {
		if err := l.evictOverCap(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

func (l *PostgresLedger) Remove(ctx context.Context, userID, token string) error {
	const q = `
		DELETE FROM gatehouse.refresh_tokens
		WHERE user_id = $1 AND token = $2
	`
	tag, err := l.db.Exec(ctx, q, userID, token)
	if err != nil {
		return fmt.Errorf("session: remove refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (l *PostgresLedger) Contains(ctx context.Context, userID, token string, now time.Time) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM gatehouse.refresh_tokens
			WHERE user_id = $1 AND token = $2 AND expires_at > $3
		)
	`
	var live bool
	if err := l.db.QueryRow(ctx, q, userID, token, now).Scan(&live); err != nil {
		return false, fmt.Errorf("session: check refresh token: %w", err)
	}
	return live, nil
}

func (l *PostgresLedger) Replace(ctx context.Context, userID, old, next string, nextExpiresAt, now time.Time) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("session: begin rotation: %w", err)
	}
	// Rollback is a no-op once the transaction has committed.
	defer func() { _ = tx.Rollback(ctx) }()

	const del = `
		DELETE FROM gatehouse.refresh_tokens
		WHERE user_id = $1 AND token = $2 AND expires_at > $3
	`
	tag, err := tx.Exec(ctx, del, userID, old, now)
	if err != nil {
		return fmt.Errorf("session: rotate refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}

	const ins = `
		INSERT INTO gatehouse.refresh_tokens (user_id, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, ins, userID, next, now, nextExpiresAt); err != nil {
		return fmt.Errorf("session: rotate refresh token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("session: commit rotation: %w", err)
	}
	return nil
}

// evictOverCap drops the oldest tokens beyond the per-user cap.
func (l *PostgresLedger) evictOverCap(ctx context.Context, userID string) error {
	const q = `
		DELETE FROM gatehouse.refresh_tokens
		WHERE user_id = $1 AND token IN (
			SELECT token FROM gatehouse.refresh_tokens
			WHERE user_id = $1
			ORDER BY created_at DESC
			OFFSET $2
		)
	`
	if _, err := l.db.Exec(ctx, q, userID, l.maxPerUser); err != nil {
		return fmt.Errorf("session: enforce token cap: %w", err)
	}
	return nil
}
