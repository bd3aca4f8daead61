// Package session implements the authentication session lifecycle:
// registration, login, refresh-token rotation, and logout.
//
// Access tokens are short-lived signed credentials that are never stored
// server-side. Refresh tokens are long-lived signed credentials that must
// additionally appear in the per-user ledger to be honored; rotation swaps
// the presented token for a fresh one atomically, so a replayed (already
// rotated) token is rejected even though its signature still verifies.
package session
