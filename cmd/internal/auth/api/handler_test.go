package authapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"gatehouse/cmd/identity"
	"gatehouse/cmd/internal/auth/session"
	"gatehouse/cmd/security/password"
	"gatehouse/cmd/security/token"
)

const goodPassword = "Sup3r$ecret"

func testCodec(t *testing.T) *token.Codec {
	t.Helper()
	cfg := token.DefaultConfig()
	cfg.AccessSecret = []byte(strings.Repeat("a", 32))
	cfg.RefreshSecret = []byte(strings.Repeat("r", 32))
	codec, err := token.NewCodec(cfg)
	require.NoError(t, err)
	return codec
}

func newTestMux(t *testing.T) (*http.ServeMux, *token.Codec) {
	t.Helper()

	pwCfg := password.DefaultConfig()
	pwCfg.Params = password.Argon2idParams{
		MemoryKiB:   16 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}

	codec := testCodec(t)
	svc, err := session.NewService(
		identity.NewMemoryStore(),
		session.NewMemoryLedger(0),
		codec,
		pwCfg,
		session.DefaultConfig(),
		nil,
	)
	require.NoError(t, err)

	cfg := Config{
		RefreshCookieName: "jid",
		CookiePath:        "/api/auth/refresh",
		CookieSecure:      false,
		MaxBodyBytes:      1 << 20,
	}

	h, err := NewHandler(nil, cfg, svc, NewGuard(codec), prometheus.NewRegistry())
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)
	return mux, codec
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if mutate != nil {
		mutate(req)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func registerUser(t *testing.T, mux *http.ServeMux, email string) (accessToken string, refreshCookie *http.Cookie) {
	t.Helper()
	rr := doJSON(t, mux, http.MethodPost, "/api/auth/register",
		`{"email":"`+email+`","password":"`+goodPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp accessTokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	for _, c := range rr.Result().Cookies() {
		if c.Name == "jid" {
			return resp.AccessToken, c
		}
	}
	t.Fatal("refresh cookie not set")
	return "", nil
}

func TestRegister_SetsScopedHTTPOnlyCookie(t *testing.T) {
	mux, _ := newTestMux(t)

	_, cookie := registerUser(t, mux, "alice@example.com")
	require.Equal(t, "/api/auth/refresh", cookie.Path)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.NotEmpty(t, cookie.Value)
}

func TestRegister_Validation(t *testing.T) {
	mux, _ := newTestMux(t)

	rr := doJSON(t, mux, http.MethodPost, "/api/auth/register",
		`{"email":"alice@example.com","password":"weak"}`, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Contains(t, resp.Errors, "Password must be at least 8 characters long")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mux, _ := newTestMux(t)
	registerUser(t, mux, "alice@example.com")

	rr := doJSON(t, mux, http.MethodPost, "/api/auth/register",
		`{"email":"alice@example.com","password":"`+goodPassword+`"}`, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"message":"User already exists"}`, rr.Body.String())
}

func TestRegister_MalformedBody(t *testing.T) {
	mux, _ := newTestMux(t)

	rr := doJSON(t, mux, http.MethodPost, "/api/auth/register", `{"email":`, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, mux, http.MethodPost, "/api/auth/register",
		`{"email":"a@b.co","password":"x","extra":true}`, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin_OKAndFailuresAreByteIdentical(t *testing.T) {
	mux, _ := newTestMux(t)
	registerUser(t, mux, "alice@example.com")

	rr := doJSON(t, mux, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"`+goodPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	unknown := doJSON(t, mux, http.MethodPost, "/api/auth/login",
		`{"email":"ghost@example.com","password":"`+goodPassword+`"}`, nil)
	wrongPw := doJSON(t, mux, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"Wr0ng$ecret"}`, nil)

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	require.Equal(t, unknown.Body.String(), wrongPw.Body.String())
	require.JSONEq(t, `{"message":"Invalid credentials"}`, unknown.Body.String())
}

func TestLogin_MissingFields(t *testing.T) {
	mux, _ := newTestMux(t)

	rr := doJSON(t, mux, http.MethodPost, "/api/auth/login", `{"email":"a@b.co"}`, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRefresh_RotatesCookie(t *testing.T) {
	mux, _ := newTestMux(t)
	_, cookie := registerUser(t, mux, "alice@example.com")

	rr := doJSON(t, mux, http.MethodPost, "/api/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(cookie)
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp accessTokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	var rotated *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "jid" {
			rotated = c
		}
	}
	require.NotNil(t, rotated)
	require.NotEqual(t, cookie.Value, rotated.Value)

	// The old cookie is now a replay.
	rr = doJSON(t, mux, http.MethodPost, "/api/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(cookie)
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.JSONEq(t, `{"message":"Invalid refresh token"}`, rr.Body.String())

	// The rotated cookie still works.
	rr = doJSON(t, mux, http.MethodPost, "/api/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(rotated)
	})
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRefresh_NoCookie(t *testing.T) {
	mux, _ := newTestMux(t)

	rr := doJSON(t, mux, http.MethodPost, "/api/auth/refresh", "", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.JSONEq(t, `{"message":"No token provided"}`, rr.Body.String())
}

func TestRefresh_GarbageCookie(t *testing.T) {
	mux, _ := newTestMux(t)

	rr := doJSON(t, mux, http.MethodPost, "/api/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "jid", Value: "garbage"})
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.JSONEq(t, `{"message":"Invalid refresh token"}`, rr.Body.String())
}

func TestLogout_RevokesAndClearsCookie(t *testing.T) {
	mux, _ := newTestMux(t)
	access, cookie := registerUser(t, mux, "alice@example.com")

	rr := doJSON(t, mux, http.MethodPost, "/api/auth/logout", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+access)
		r.AddCookie(cookie)
	})
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"message":"Logged out"}`, rr.Body.String())

	var cleared *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "jid" {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)

	// The revoked refresh token is dead.
	rr = doJSON(t, mux, http.MethodPost, "/api/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(cookie)
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogout_IsIdempotent(t *testing.T) {
	mux, _ := newTestMux(t)
	access, cookie := registerUser(t, mux, "alice@example.com")

	for i := 0; i < 2; i++ {
		rr := doJSON(t, mux, http.MethodPost, "/api/auth/logout", "", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+access)
			r.AddCookie(cookie)
		})
		require.Equal(t, http.StatusOK, rr.Code)
	}

	// No cookie at all still logs out fine.
	rr := doJSON(t, mux, http.MethodPost, "/api/auth/logout", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+access)
	})
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestLogout_RequiresAccessToken(t *testing.T) {
	mux, codec := newTestMux(t)

	rr := doJSON(t, mux, http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.JSONEq(t, `{"message":"No token provided"}`, rr.Body.String())

	// Expired access token is forbidden, not unauthorized.
	past := time.Now().UTC().Add(-time.Hour)
	expired, _, err := codec.Issue(token.KindAccess, "user-1", past.Add(-24*time.Hour))
	require.NoError(t, err)

	rr = doJSON(t, mux, http.MethodPost, "/api/auth/logout", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+expired)
	})
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.JSONEq(t, `{"message":"Invalid or expired token"}`, rr.Body.String())
}

func TestMe_ReturnsSubject(t *testing.T) {
	mux, _ := newTestMux(t)
	access, _ := registerUser(t, mux, "alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp meResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.UserID)
}

func TestEndpoints_MethodNotAllowed(t *testing.T) {
	mux, _ := newTestMux(t)

	for _, path := range []string{"/api/auth/register", "/api/auth/login", "/api/auth/refresh"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		require.Equal(t, http.StatusMethodNotAllowed, rr.Code, path)
	}
}
