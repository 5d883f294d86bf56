package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-system/internal/api/middleware"
	"github.com/99minutos/auth-system/internal/core/domain"
)

// ctxUser returns the user injected by the auth middleware. Reaching a handler
// without one means the route was wired without authentication, which is
// reported as 403 rather than served anonymously.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}
	return user, nil
}
