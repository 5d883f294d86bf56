package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-system/internal/core/ports"
)

// RequireUser resolves the acting user through strategy and rejects the
// request with 403 when there is none. It does not look at excluded paths and
// is meant for individual routes.
func RequireUser(strategy ports.AuthStrategy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentUser(c); ok {
				return next(c)
			}
			user, ok := strategy.CurrentUser(c.Request())
			if !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden"})
			}
			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}
