package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/api/metrics"
	"github.com/99minutos/auth-system/internal/core/domain"
	"github.com/99minutos/auth-system/internal/core/ports"
	"github.com/99minutos/auth-system/pkg/logger"
)

// SessionHandler serves the form-based session login and logout under
// /api/v1/auth_session.
type SessionHandler struct {
	auth     ports.AuthService
	sessions ports.SessionManager
	audit    *logger.AuditLogger
	cookie   CookieOptions
}

func NewSessionHandler(auth ports.AuthService, sessions ports.SessionManager, audit *logger.AuditLogger, cookie CookieOptions) *SessionHandler {
	return &SessionHandler{auth: auth, sessions: sessions, audit: audit, cookie: cookie}
}

// Login checks form credentials and opens a session.
//
// @Summary      Session login
// @Tags         auth_session
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email     formData  string  true  "Account email"
// @Param        password  formData  string  true  "Account password"
// @Success      200  {object}  domain.User
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/auth_session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	email := c.FormValue("email")
	if email == "" {
		metrics.LoginsTotal.WithLabelValues("missing_field").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email missing"})
	}
	password := c.FormValue("password")
	if password == "" {
		metrics.LoginsTotal.WithLabelValues("missing_field").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "password missing"})
	}

	ctx := c.Request().Context()
	user, err := h.auth.Authenticate(ctx, email, password)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
		h.audit.Event(zerolog.WarnLevel, "event", "login_failed", "reason", "unknown_user", "email", email)
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no user found for this email"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginsTotal.WithLabelValues("wrong_password").Inc()
		h.audit.Event(zerolog.WarnLevel, "event", "login_failed", "reason", "wrong_password", "email", email)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "wrong password"})
	case err != nil:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	sessionID, err := h.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	metrics.SessionsTotal.WithLabelValues("created").Inc()
	h.audit.Event(zerolog.InfoLevel, "event", "login", "user_id", user.ID, "email", user.Email)

	setSessionCookie(c, h.sessions.CookieName(), sessionID, h.cookie)
	return c.JSON(http.StatusOK, user)
}

// Logout destroys the session named by the request cookie.
//
// @Summary      Session logout
// @Tags         auth_session
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/auth_session/logout [delete]
func (h *SessionHandler) Logout(c echo.Context) error {
	if !h.sessions.DestroySession(c.Request()) {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	metrics.SessionsTotal.WithLabelValues("destroyed").Inc()
	h.audit.Event(zerolog.InfoLevel, "event", "logout")

	clearSessionCookie(c, h.sessions.CookieName(), h.cookie)
	return c.JSON(http.StatusOK, map[string]string{})
}
