package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kdos/folio/internal/config"
	"github.com/kdos/folio/internal/domain"
)

type contextKey string

const (
	// ContextKeySession is the key for storing the admin session in request context.
	ContextKeySession contextKey = "session"
)

// SessionChecker resolves a session token to a live session.
type SessionChecker interface {
	Check(ctx context.Context, token string) (*domain.Session, error)
}

// AuthMiddleware gates admin routes on the session cookie.
type AuthMiddleware struct {
	checker SessionChecker
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(checker SessionChecker) *AuthMiddleware {
	return &AuthMiddleware{
		checker: checker,
	}
}

// RequireAuth validates the session cookie and adds the session to request context.
// The wrapped handler does not run for anonymous requests.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.checker.Check(r.Context(), SessionToken(r))
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			slog.Error("session check failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeySession, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionToken returns the session cookie value, or "" when absent.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(config.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// GetSessionFromContext retrieves the authenticated session from request context.
func GetSessionFromContext(ctx context.Context) (*domain.Session, error) {
	session, ok := ctx.Value(ContextKeySession).(*domain.Session)
	if !ok || session == nil {
		return nil, domain.ErrUnauthenticated
	}
	return session, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
