// Package authapi is the HTTP transport for authentication: the
// register/login/refresh/logout endpoints, the bearer-token guard, and the
// refresh-token cookie plumbing.
//
// The refresh token travels only in an HttpOnly cookie scoped to the refresh
// path; the access token travels only in the JSON body and the
// Authorization header. Error bodies are tagged: either {"message": "..."}
// or {"errors": ["...", ...]}, never both.
package authapi
