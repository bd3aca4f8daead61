package session

import (
	"context"
	"sync"
	"time"
)

type ledgerEntry struct {
	token     string
	createdAt time.Time
	expiresAt time.Time
}

// MemoryLedger is an in-process Ledger used when no database is configured
// (dev mode) and in tests.
type MemoryLedger struct {
	maxPerUser int

	mu     sync.Mutex
	byUser map[string][]ledgerEntry
}

// NewMemoryLedger creates an empty ledger. maxPerUser of zero means
// unbounded.
func NewMemoryLedger(maxPerUser int) *MemoryLedger {
	return &MemoryLedger{
		maxPerUser: maxPerUser,
		byUser:     make(map[string][]ledgerEntry),
	}
}

func (l *MemoryLedger) Add(_ context.Context, userID, token string, expiresAt, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := pruneExpired(l.byUser[userID], now)
	entries = append(entries, ledgerEntry{token: token, createdAt: now, expiresAt: expiresAt})
	if l.maxPerUser > 0 && len(entries) > l.maxPerUser {
		// Evict oldest first. Entries are appended in creation order.
		entries = entries[len(entries)-l.maxPerUser:]
	}
	l.byUser[userID] = entries
	return nil
}

func (l *MemoryLedger) Remove(_ context.Context, userID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.byUser[userID]
	for i, e := range entries {
		if e.token == token {
			l.byUser[userID] = append(entries[:i:i], entries[i+1:]...)
			if len(l.byUser[userID]) == 0 {
				delete(l.byUser, userID)
			}
			return nil
		}
	}
	return ErrTokenNotFound
}

func (l *MemoryLedger) Contains(_ context.Context, userID, token string, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.byUser[userID] {
		if e.token == token && now.Before(e.expiresAt) {
			return true, nil
		}
	}
	return false, nil
}

func (l *MemoryLedger) Replace(_ context.Context, userID, old, next string, nextExpiresAt, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := pruneExpired(l.byUser[userID], now)
	l.byUser[userID] = entries

	for i, e := range entries {
		if e.token == old {
			entries[i] = ledgerEntry{token: next, createdAt: now, expiresAt: nextExpiresAt}
			return nil
		}
	}
	return ErrTokenNotFound
}

func pruneExpired(entries []ledgerEntry, now time.Time) []ledgerEntry {
	live := entries[:0]
	for _, e := range entries {
		if now.Before(e.expiresAt) {
			live = append(live, e)
		}
	}
	return live
}
