package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/quoteboard/quoteboard/internal/auth"
	"github.com/quoteboard/quoteboard/internal/handler/dto"
	"github.com/quoteboard/quoteboard/internal/model"
	"github.com/quoteboard/quoteboard/internal/service"
)

// SessionStore persists session tokens between login and logout.
type SessionStore interface {
	SetSession(ctx context.Context, token string, p *model.Principal, ttl time.Duration) error
	DeleteSession(ctx context.Context, token string) error
}

// AuthHandler handles login, logout and identity lookups.
type AuthHandler struct {
	users      *service.UserService
	sessions   SessionStore
	sessionTTL time.Duration
	secure     bool
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. secure controls the Secure
// flag on the session cookie and should be true outside development.
func NewAuthHandler(
	users *service.UserService,
	sessions SessionStore,
	sessionTTL time.Duration,
	secure bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		secure:     secure,
		logger:     logger,
	}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
			return
		}
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	principal := &model.Principal{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
	}

	if err := h.sessions.SetSession(r.Context(), token.Plaintext, principal, h.sessionTTL); err != nil {
		h.logger.Error("session store failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("login",
		"user_id", user.ID,
		"session_id", token.ID,
	)

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token.Plaintext,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token: token.Plaintext,
		User:  dto.ToUserResponse(user),
	})
}

// Logout handles POST /api/v1/auth/logout.
// Requires an authenticated session; the token is revoked server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token != "" {
		if err := h.sessions.DeleteSession(r.Context(), token); err != nil {
			h.logger.Warn("session delete failed", "error", err.Error())
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := auth.MustPrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, dto.UserResponse{
		ID:          p.UserID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		IsAdmin:     p.IsAdmin,
	})
}

// extractToken pulls the session token from the Authorization header or
// the session cookie, mirroring the auth middleware.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
