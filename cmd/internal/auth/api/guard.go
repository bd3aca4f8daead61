package authapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gatehouse/cmd/security/token"
)

type ctxKey int

const subjectKey ctxKey = iota

// Guard protects routes with the short-lived access token. It only checks
// the token itself (signature, issuer, expiry); no server-side state is
// consulted.
type Guard struct {
	codec *token.Codec
}

// NewGuard builds a Guard over the given codec.
func NewGuard(codec *token.Codec) *Guard {
	return &Guard{codec: codec}
}

// Require wraps next so it only runs with a valid bearer access token.
// A missing or malformed Authorization header is 401; a present token that
// fails verification (bad signature, wrong key, expired) is 403.
func (g *Guard) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeMessage(w, http.StatusUnauthorized, "No token provided")
			return
		}

		claims, err := g.codec.Verify(token.KindAccess, raw, time.Now().UTC())
		if err != nil {
			writeMessage(w, http.StatusForbidden, "Invalid or expired token")
			return
		}

		next(w, r.WithContext(withSubject(r.Context(), claims.UserID)))
	}
}

// Subject returns the authenticated user id stored by Require.
func Subject(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subjectKey).(string)
	return id, ok && id != ""
}

func withSubject(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, subjectKey, userID)
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
