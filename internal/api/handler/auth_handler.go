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

// AuthHandler is the JSON flavour of registration and login.
type AuthHandler struct {
	authService ports.AuthService
	sessions    ports.SessionManager
	audit       *logger.AuditLogger
	cookie      CookieOptions
}

func NewAuthHandler(authService ports.AuthService, sessions ports.SessionManager, audit *logger.AuditLogger, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, audit: audit, cookie: cookie}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	SessionID string       `json:"session_id,omitempty"`
	User      *domain.User `json:"user,omitempty"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrValidation) {
			status = http.StatusBadRequest
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	h.audit.Event(zerolog.InfoLevel, "event", "register", "user_id", user.ID, "email", user.Email)
	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a user and opens a session. The session id is returned
// in the body and as a cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	user, err := h.authService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		status := http.StatusInternalServerError
		result := "error"
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			status, result = http.StatusUnauthorized, "wrong_password"
		case errors.Is(err, domain.ErrUserNotFound):
			status, result = http.StatusNotFound, "unknown_user"
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		h.audit.Event(zerolog.WarnLevel, "event", "login_failed", "reason", result, "email", req.Email)
		return c.JSON(status, map[string]string{"error": err.Error()})
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
	return c.JSON(http.StatusOK, authResponse{SessionID: sessionID, User: user})
}
