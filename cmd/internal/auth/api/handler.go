package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gatehouse/cmd/internal/auth/session"
)

// Handler wires the HTTP auth endpoints to the session service.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	sessions *session.Service
	guard    *Guard
	metrics  *metrics
}

// NewHandler constructs an auth Handler. reg may be nil to use the default
// Prometheus registerer.
func NewHandler(log *slog.Logger, cfg Config, sessions *session.Service, guard *Guard, reg prometheus.Registerer) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if sessions == nil {
		return nil, errors.New("authapi: nil session service")
	}
	if guard == nil {
		return nil, errors.New("authapi: nil guard")
	}

	return &Handler{
		log:      log,
		cfg:      cfg,
		sessions: sessions,
		guard:    guard,
		metrics:  newMetrics(reg),
	}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/refresh", h.handleRefresh)
	mux.HandleFunc("/api/auth/logout", h.guard.Require(h.handleLogout))
	mux.HandleFunc("/api/auth/me", h.guard.Require(h.handleMe))
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	user, issued, err := h.sessions.Register(ctx, req.Email, req.Password, now)
	if err != nil {
		var vErr session.ValidationError
		switch {
		case errors.As(err, &vErr):
			h.metrics.observe("register", "invalid")
			writeFieldErrors(w, http.StatusBadRequest, vErr.Messages)
		case errors.Is(err, session.ErrEmailTaken):
			h.metrics.observe("register", "conflict")
			writeMessage(w, http.StatusBadRequest, "User already exists")
		case errors.Is(err, session.ErrStoreUnavailable):
			h.metrics.observe("register", "unavailable")
			writeMessage(w, http.StatusServiceUnavailable, "Service unavailable")
		default:
			h.log.Error("auth.register.fail", "err", err)
			h.metrics.observe("register", "error")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.metrics.observe("register", "ok")
	h.log.Info("auth.register.ok", "user_id", user.ID)
	h.setRefreshCookie(w, issued.RefreshToken, issued.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: issued.AccessToken})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	user, issued, err := h.sessions.Login(ctx, req.Email, req.Password, now)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidCredentials):
			// One body for unknown email and wrong password.
			h.metrics.observe("login", "rejected")
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, session.ErrStoreUnavailable):
			h.metrics.observe("login", "unavailable")
			writeMessage(w, http.StatusServiceUnavailable, "Service unavailable")
		default:
			h.log.Error("auth.login.fail", "err", err)
			h.metrics.observe("login", "error")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.metrics.observe("login", "ok")
	h.log.Info("auth.login.ok", "user_id", user.ID)
	h.setRefreshCookie(w, issued.RefreshToken, issued.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: issued.AccessToken})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw, ok := h.refreshTokenFromCookie(r)
	if !ok {
		h.metrics.observe("refresh", "missing")
		writeMessage(w, http.StatusUnauthorized, "No token provided")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	issued, err := h.sessions.Refresh(ctx, raw, now)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidRefresh):
			if errors.Is(err, session.ErrRefreshReplayed) {
				h.metrics.observeReplay()
			}
			h.metrics.observe("refresh", "rejected")
			writeMessage(w, http.StatusUnauthorized, "Invalid refresh token")
		case errors.Is(err, session.ErrStoreUnavailable):
			h.metrics.observe("refresh", "unavailable")
			writeMessage(w, http.StatusServiceUnavailable, "Service unavailable")
		default:
			h.log.Error("auth.refresh.fail", "err", err)
			h.metrics.observe("refresh", "error")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.metrics.observe("refresh", "ok")
	h.setRefreshCookie(w, issued.RefreshToken, issued.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: issued.AccessToken})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userID, _ := Subject(r.Context())

	raw, _ := h.refreshTokenFromCookie(r)
	if err := h.sessions.Logout(r.Context(), userID, raw); err != nil {
		// Best effort; the client still loses its cookie.
		h.log.Error("auth.logout.fail", "err", err, "user_id", userID)
	}

	h.metrics.observe("logout", "ok")
	h.clearRefreshCookie(w)
	writeMessage(w, http.StatusOK, "Logged out")
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userID, ok := Subject(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "No token provided")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{UserID: userID})
}
