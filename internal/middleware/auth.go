package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/quoteboard/quoteboard/internal/auth"
	"github.com/quoteboard/quoteboard/internal/model"
)

// SessionReader resolves a session token to the principal it belongs to.
// A nil principal with a nil error is a miss (unknown or expired token).
type SessionReader interface {
	GetSession(ctx context.Context, token string) (*model.Principal, error)
}

// AuthConfig holds configuration for the session auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Sessions SessionReader
}

// Auth returns a middleware that authenticates requests by session
// token. The token is read from the Authorization header or the session
// cookie, validated, and resolved against the session store; the
// resulting principal is injected into the request context.
//
// All failures produce the same 401 response so tokens cannot be probed.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractSessionToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Validate format before touching storage. Only the ULID
			// part is loggable.
			sessionID, err := auth.ParseSessionToken(token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_format"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			principal, err := cfg.Sessions.GetSession(r.Context(), token)
			if err != nil {
				// Fail closed: a session store outage never degrades
				// into anonymous access.
				cfg.Logger.Error("session store error during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			if principal == nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "unknown_session"),
					slog.String("session_id", sessionID),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("session_id", sessionID),
				slog.Int64("user_id", principal.UserID),
				slog.Bool("is_admin", principal.IsAdmin),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns middleware that rejects non-admin principals.
// Must be applied after Auth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())
			if principal == nil {
				writeAuthError(w)
				return
			}
			if !principal.IsAdmin {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"Admin access required","code":"FORBIDDEN"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractSessionToken extracts the session token from the request.
// Supports "Authorization: Bearer <token>" and the session cookie.
func extractSessionToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
// The body matches the handler package's error envelope.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Invalid or missing session","code":"UNAUTHORIZED"}`))
}
