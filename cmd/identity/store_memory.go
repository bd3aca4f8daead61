package identity

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used when no database is configured
// (dev mode) and in tests. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string // email -> id
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

// CreateUser inserts u, enforcing email uniqueness.
func (s *MemoryStore) CreateUser(_ context.Context, u User) error {
	if u.ID == "" || u.Email == "" || u.PasswordHash == "" {
		return OpError{Op: "identity.CreateUser", Kind: ErrInvalidInput}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return ConflictError{Op: "identity.CreateUser", Field: "email"}
	}
	if _, ok := s.byID[u.ID]; ok {
		return ConflictError{Op: "identity.CreateUser", Field: "id"}
	}

	s.byID[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return nil
}

// GetByEmail returns the user with the exact email.
func (s *MemoryStore) GetByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return User{}, OpError{Op: "identity.GetByEmail", Kind: ErrNotFound}
	}
	return s.byID[id], nil
}

// GetByID returns the user with the given id.
func (s *MemoryStore) GetByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, OpError{Op: "identity.GetByID", Kind: ErrNotFound}
	}
	return u, nil
}
