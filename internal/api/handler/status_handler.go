package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// StatusHandler serves the /api/v1 probe endpoints and the current user.
type StatusHandler struct{}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

// Status
//
// @Summary      API status
// @Tags         status
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/v1/status [get]
func (h *StatusHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
}

// Unauthorized always answers 401; used to check error rendering.
func (h *StatusHandler) Unauthorized(c echo.Context) error {
	return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
}

// Forbidden always answers 403.
func (h *StatusHandler) Forbidden(c echo.Context) error {
	return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
}

// Me returns the authenticated user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BasicAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/users/me [get]
func (h *StatusHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
