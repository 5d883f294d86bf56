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

// UserHandler serves the form-based user service: registration, sessions,
// profile and password reset.
type UserHandler struct {
	auth     ports.AuthService
	reset    ports.ResetService
	sessions ports.SessionManager
	audit    *logger.AuditLogger
	cookie   CookieOptions
}

func NewUserHandler(
	auth ports.AuthService,
	reset ports.ResetService,
	sessions ports.SessionManager,
	audit *logger.AuditLogger,
	cookie CookieOptions,
) *UserHandler {
	return &UserHandler{auth: auth, reset: reset, sessions: sessions, audit: audit, cookie: cookie}
}

type credentialsForm struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type resetRequestForm struct {
	Email string `form:"email" validate:"required"`
}

type resetPasswordForm struct {
	Email       string `form:"email" validate:"required"`
	ResetToken  string `form:"reset_token" validate:"required"`
	NewPassword string `form:"new_password" validate:"required"`
}

type messageResponse struct {
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

type resetTokenResponse struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

func bindForm(c echo.Context, form any) error {
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Index is the service greeting.
//
// @Summary      Greeting
// @Tags         users
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       / [get]
func (h *UserHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Bienvenue"})
}

// Register creates an account from form fields.
//
// @Summary      Register a user
// @Tags         users
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email     formData  string  true  "Account email"
// @Param        password  formData  string  true  "Account password"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var form credentialsForm
	if err := bindForm(c, &form); err != nil {
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), form.Email, form.Password)
	if errors.Is(err, domain.ErrUserExists) {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "email already registered"})
	}
	if err != nil {
		return err
	}

	h.audit.Event(zerolog.InfoLevel, "event", "register", "user_id", user.ID, "email", user.Email)
	return c.JSON(http.StatusOK, messageResponse{Email: user.Email, Message: "user created"})
}

// Login opens a session for valid credentials.
//
// @Summary      Log in
// @Tags         users
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email     formData  string  true  "Account email"
// @Param        password  formData  string  true  "Account password"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /sessions [post]
func (h *UserHandler) Login(c echo.Context) error {
	var form credentialsForm
	if err := c.Bind(&form); err != nil || form.Email == "" || form.Password == "" {
		metrics.LoginsTotal.WithLabelValues("missing_field").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	ctx := c.Request().Context()
	user, err := h.auth.Authenticate(ctx, form.Email, form.Password)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) && !errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			return err
		}
		metrics.LoginsTotal.WithLabelValues("wrong_password").Inc()
		h.audit.Event(zerolog.WarnLevel, "event", "login_failed", "email", form.Email)
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
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
	return c.JSON(http.StatusOK, messageResponse{Email: user.Email, Message: "logged in"})
}

// Logout ends the caller's session and redirects home.
//
// @Summary      Log out
// @Tags         users
// @Success      302
// @Failure      403  {object}  map[string]string
// @Router       /sessions [delete]
func (h *UserHandler) Logout(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if !h.sessions.DestroySession(c.Request()) {
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}
	metrics.SessionsTotal.WithLabelValues("destroyed").Inc()
	h.audit.Event(zerolog.InfoLevel, "event", "logout", "user_id", user.ID)

	clearSessionCookie(c, h.sessions.CookieName(), h.cookie)
	return c.Redirect(http.StatusFound, "/")
}

// Profile returns the email of the session owner.
//
// @Summary      Profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"email": user.Email})
}

// GetResetPasswordToken issues a reset token for the account.
//
// @Summary      Request a password reset token
// @Tags         users
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email  formData  string  true  "Account email"
// @Success      200  {object}  resetTokenResponse
// @Failure      403  {object}  map[string]string
// @Router       /reset_password [post]
func (h *UserHandler) GetResetPasswordToken(c echo.Context) error {
	var form resetRequestForm
	if err := bindForm(c, &form); err != nil {
		return err
	}

	token, err := h.reset.Issue(c.Request().Context(), form.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		metrics.ResetTokensTotal.WithLabelValues("issued", "rejected").Inc()
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}
	if err != nil {
		return err
	}

	metrics.ResetTokensTotal.WithLabelValues("issued", "ok").Inc()
	h.audit.Event(zerolog.InfoLevel, "event", "reset_token_issued", "email", form.Email)
	return c.JSON(http.StatusOK, resetTokenResponse{Email: form.Email, ResetToken: token})
}

// UpdatePassword redeems a reset token and sets the new password. The email
// must belong to the token holder.
//
// @Summary      Reset a password
// @Tags         users
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email         formData  string  true  "Account email"
// @Param        reset_token   formData  string  true  "Token from POST /reset_password"
// @Param        new_password  formData  string  true  "New password"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /reset_password [put]
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	var form resetPasswordForm
	if err := bindForm(c, &form); err != nil {
		return err
	}

	err := h.reset.Redeem(c.Request().Context(), form.Email, form.ResetToken, form.NewPassword)
	if errors.Is(err, domain.ErrInvalidResetToken) {
		metrics.ResetTokensTotal.WithLabelValues("redeemed", "rejected").Inc()
		h.audit.Event(zerolog.WarnLevel, "event", "reset_rejected", "email", form.Email)
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}
	if err != nil {
		return err
	}

	metrics.ResetTokensTotal.WithLabelValues("redeemed", "ok").Inc()
	h.audit.Event(zerolog.InfoLevel, "event", "password_updated", "email", form.Email)
	return c.JSON(http.StatusOK, messageResponse{Email: form.Email, Message: "Password updated"})
}
