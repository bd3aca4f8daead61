package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the Postgres store needs. It exists so
// tests can substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// PostgresStore persists users in the gatehouse.users table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore wraps db as a Store.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, u User) error {
	if u.ID == "" || u.Email == "" || u.PasswordHash == "" {
		return OpError{Op: "identity.CreateUser", Kind: ErrInvalidInput}
	}

	const q = `
		INSERT INTO gatehouse.users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.Exec(ctx, q, u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			field := "email"
			if pgErr.ConstraintName == "users_pkey" {
				field = "id"
			}
			return ConflictError{Op: "identity.CreateUser", Field: field}
		}
		return fmt.Errorf("identity: create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (User, error) {
	const q = `
		SELECT id, email, password_hash, created_at
		FROM gatehouse.users
		WHERE email = $1
	`
	return s.scanUser(ctx, "identity.GetByEmail", q, email)
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	const q = `
		SELECT id, email, password_hash, created_at
		FROM gatehouse.users
		WHERE id = $1
	`
	return s.scanUser(ctx, "identity.GetByID", q, id)
}

func (s *PostgresStore) scanUser(ctx context.Context, op, q string, arg any) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, q, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, OpError{Op: op, Kind: ErrNotFound}
		}
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
