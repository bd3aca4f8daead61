// Package token issues and verifies the signed tokens used by Gatehouse.
//
// Two token kinds exist: short-lived access tokens and long-lived refresh
// tokens. Both are compact JWTs (HS256) carrying the subject id, issued-at
// and expiry. The kinds are signed with distinct secret keys so possession
// of one kind's key cannot forge the other kind.
//
// Verification failures are categorized (ErrTokenExpired vs ErrTokenInvalid)
// for observability only; callers treat both as unauthenticated.
//
// Environment:
//   - GATEHOUSE_ACCESS_TOKEN_SECRET (required, >= 32 bytes)
//   - GATEHOUSE_REFRESH_TOKEN_SECRET (required, >= 32 bytes, distinct from access)
//   - GATEHOUSE_ACCESS_TOKEN_TTL (default 15m)
//   - GATEHOUSE_REFRESH_TOKEN_TTL (default 168h)
//   - GATEHOUSE_AUTH_ISSUER (default "gatehouse")
package token
