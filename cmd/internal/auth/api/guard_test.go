package authapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gatehouse/cmd/security/token"
)

func TestGuard_Require(t *testing.T) {
	codec := testCodec(t)
	guard := NewGuard(codec)

	var gotSubject string
	protected := guard.Require(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = Subject(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	access, _, err := codec.Issue(token.KindAccess, "user-1", time.Now().UTC())
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusForbidden},
		{"valid", "Bearer " + access, http.StatusOK},
		{"case-insensitive scheme", "bearer " + access, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			protected(rr, req)
			require.Equal(t, tc.status, rr.Code)
		})
	}

	require.Equal(t, "user-1", gotSubject)
}

func TestGuard_RejectsRefreshTokenAsAccess(t *testing.T) {
	codec := testCodec(t)
	guard := NewGuard(codec)

	protected := guard.Require(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// A refresh token must never open an access-guarded door.
	refresh, _, err := codec.Issue(token.KindRefresh, "user-1", time.Now().UTC())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rr := httptest.NewRecorder()
	protected(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSubject_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := Subject(req.Context())
	require.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer   abc.def.ghi  ")
	require.Equal(t, "abc.def.ghi", bearerToken(req))

	req.Header.Set("Authorization", strings.Repeat("x", 3))
	require.Equal(t, "", bearerToken(req))
}
