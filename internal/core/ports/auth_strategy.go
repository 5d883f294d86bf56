package ports

import (
	"context"
	"net/http"

	"github.com/99minutos/auth-system/internal/core/domain"
)

// AuthStrategy decides whether a request path needs authentication and
// resolves the acting user from the request credentials.
type AuthStrategy interface {
	RequireAuth(path string, excludedPaths []string) bool
	AuthorizationHeader(r *http.Request) string
	SessionCookie(r *http.Request) string
	// CurrentUser returns false for any expected rejection: missing or
	// malformed credentials, unknown user, expired session.
	CurrentUser(r *http.Request) (*domain.User, bool)
}

// SessionManager is implemented by the cookie-based strategies.
type SessionManager interface {
	AuthStrategy
	CookieName() string
	CreateSession(ctx context.Context, userID string) (string, error)
	DestroySession(r *http.Request) bool
}
