// Package identity holds Gatehouse's user records and the stores that
// persist them.
//
// It owns the User model, the Store boundary (in-memory and PostgreSQL
// implementations), and the typed errors callers match on with errors.Is/As.
// Password hashing lives in cmd/security/password; identity only stores the
// resulting hash and never sees plaintext beyond the call boundary.
package identity
