package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/auth-system/docs"
	"github.com/99minutos/auth-system/internal/api/handler"
	"github.com/99minutos/auth-system/internal/api/middleware"
	"github.com/99minutos/auth-system/internal/core/ports"
	"github.com/99minutos/auth-system/pkg/logger"
)

// Deps is everything the router needs from the composition root.
type Deps struct {
	Log zerolog.Logger

	// Strategy guards /api/v1; StrategyKind labels its metrics.
	Strategy      ports.AuthStrategy
	StrategyKind  string
	ExcludedPaths []string

	// Sessions backs the login and logout endpoints whatever Strategy is.
	Sessions ports.SessionManager
	Auth     ports.AuthService
	Reset    ports.ResetService

	Audit        *logger.AuditLogger
	Cookie       handler.CookieOptions
	HealthChecks []handler.DependencyCheck
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))

	// --- Handlers ---
	userHandler := handler.NewUserHandler(d.Auth, d.Reset, d.Sessions, d.Audit, d.Cookie)
	sessionHandler := handler.NewSessionHandler(d.Auth, d.Sessions, d.Audit, d.Cookie)
	authHandler := handler.NewAuthHandler(d.Auth, d.Sessions, d.Audit, d.Cookie)
	statusHandler := handler.NewStatusHandler()
	requireUser := middleware.RequireUser(d.Sessions)

	// --- User service (form API) ---
	e.GET("/", userHandler.Index)
	e.POST("/users", userHandler.Register)
	e.POST("/sessions", userHandler.Login)
	e.DELETE("/sessions", userHandler.Logout, requireUser)
	e.GET("/profile", userHandler.Profile, requireUser)
	e.POST("/reset_password", userHandler.GetResetPasswordToken)
	e.PUT("/reset_password", userHandler.UpdatePassword)

	// --- JSON auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Session API, guarded by the configured strategy ---
	v1 := e.Group("/api/v1", middleware.Authenticate(d.Strategy, d.StrategyKind, d.ExcludedPaths))
	v1.GET("/status", statusHandler.Status)
	v1.GET("/unauthorized", statusHandler.Unauthorized)
	v1.GET("/forbidden", statusHandler.Forbidden)
	v1.GET("/users/me", statusHandler.Me)
	v1.POST("/auth_session/login", sessionHandler.Login)
	v1.DELETE("/auth_session/logout", sessionHandler.Logout)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.HealthChecks...)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?

	// --- Observability ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
