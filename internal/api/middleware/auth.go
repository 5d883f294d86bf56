package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-system/internal/api/metrics"
	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
)

const currentUserKey = "current_user"

// Authenticate guards every path the strategy says needs authentication.
// A request carrying neither an Authorization header nor a session cookie is
// rejected with 401; one whose credentials resolve to no user gets 403.
// Otherwise the user is stored on the context for CurrentUser.
func Authenticate(strategy ports.AuthStrategy, kind string, excludedPaths []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !strategy.RequireAuth(req.URL.Path, excludedPaths) {
				metrics.AuthDecisionsTotal.WithLabelValues(kind, "skipped").Inc()
				return next(c)
			}

			if strategy.AuthorizationHeader(req) == "" && strategy.SessionCookie(req) == "" {
				metrics.AuthDecisionsTotal.WithLabelValues(kind, "unauthorized").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			user, ok := strategy.CurrentUser(req)
			if !ok {
				metrics.AuthDecisionsTotal.WithLabelValues(kind, "forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
			}

			metrics.AuthDecisionsTotal.WithLabelValues(kind, "ok").Inc()
			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by Authenticate or RequireUser.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(currentUserKey).(*domain.User)
	return user, ok && user != nil
}
