package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-system/internal/api"
	"github.com/99minutos/auth-system/internal/api/handler"
	"github.com/99minutos/auth-system/internal/core/ports"
	"github.com/99minutos/auth-system/internal/core/service"
	"github.com/99minutos/auth-system/internal/infrastructure/db/memory"
	mongostore "github.com/99minutos/auth-system/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/auth-system/internal/infrastructure/db/redis"
	"github.com/99minutos/auth-system/internal/infrastructure/queue"
	"github.com/99minutos/auth-system/internal/infrastructure/session"
	"github.com/99minutos/auth-system/internal/pkg/config"
	"github.com/99minutos/auth-system/pkg/logger"
)

// AuditSource names the audit log stream written by the HTTP handlers.
const AuditSource = "user_data"

type App struct {
	cfg   *config.Config
	log   zerolog.Logger
	echo  *echo.Echo
	infra *Infra
	pool  *queue.HashPool
}

// New wires stores, services and the router according to cfg. Connections
// are opened here; Shutdown releases them.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	kind, err := service.ParseStrategyKind(cfg.Auth.Type)
	if err != nil {
		return nil, fmt.Errorf("AUTH_TYPE: %w", err)
	}
	redactor, err := logger.NewRedactor(cfg.PIIFields, logger.DefaultRedaction, logger.DefaultSeparator)
	if err != nil {
		return nil, fmt.Errorf("PII_FIELDS: %w", err)
	}

	infra, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	users, err := newUserRepository(ctx, cfg, infra)
	if err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}

	ttl := cfg.Auth.SessionTTL()
	pool := queue.NewHashPool(newHasher(cfg.Hash), cfg.Hash.Workers, log)
	pool.Start(context.Background())

	strategy, sessions := service.NewStrategy(kind, cfg.Auth.SessionName, ttl, users, newSessionStore(cfg, infra, users, sessionRetention(kind, ttl)), pool)

	cookie := handler.CookieOptions{Secure: cfg.Auth.CookieSecure}
	if kind == service.KindSessionWithExpiry {
		cookie.TTL = ttl
	}

	e := api.NewRouter(api.Deps{
		Log:           log,
		Strategy:      strategy,
		StrategyKind:  string(kind),
		ExcludedPaths: cfg.Auth.ExcludedPaths,
		Sessions:      sessions,
		Auth:          service.NewAuthService(users, pool),
		Reset:         service.NewResetTokenService(users, pool),
		Audit:         logger.NewAuditLogger(log, AuditSource, redactor),
		Cookie:        cookie,
		HealthChecks:  infra.Checks(),
	})

	log.Info().
		Str("auth_type", string(kind)).
		Str("session_store", cfg.Store.Sessions).
		Str("user_store", cfg.Store.Users).
		Str("hasher", cfg.Hash.Algorithm).
		Dur("session_ttl", ttl).
		Msg("app wired")

	return &App{cfg: cfg, log: log, echo: e, infra: infra, pool: pool}, nil
}

func newUserRepository(ctx context.Context, cfg *config.Config, infra *Infra) (ports.UserRepository, error) {
	if cfg.Store.Users != "mongo" {
		return memory.NewUserRepository(), nil
	}
	repo := mongostore.NewUserRepository(infra.DB)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// sessionRetention is how long the redis store keeps a record. Only an
// expiring strategy gets a bound, set past the expiry so a late request still
// resolves and is rejected as expired rather than unknown. Other strategies
// keep sessions until they are destroyed.
func sessionRetention(kind service.StrategyKind, ttl time.Duration) time.Duration {
	if kind != service.KindSessionWithExpiry || ttl <= 0 {
		return 0
	}
	return 2 * ttl
}

func newSessionStore(cfg *config.Config, infra *Infra, users ports.UserRepository, retention time.Duration) ports.SessionStore {
	switch cfg.Store.Sessions {
	case "redis":
		return redisstore.NewSessionStore(infra.Redis, retention)
	case "user":
		return session.NewUserRecordStore(users)
	default:
		return session.NewMemoryStore()
	}
}

func newHasher(cfg config.HashConfig) ports.PasswordHasher {
	if cfg.Algorithm == "argon2id" {
		return service.NewArgon2idHasher(service.Argon2Params{
			Time:    cfg.Argon2Time,
			Memory:  cfg.Argon2MemoryKB,
			Threads: cfg.Argon2Threads,
		})
	}
	return service.NewBcryptHasher(cfg.BcryptCost)
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.echo
}

// Run serves HTTP until Shutdown is called.
func (a *App) Run() error {
	err := a.echo.Start(":" + a.cfg.Port)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains HTTP first so in-flight logins can still hash, then stops
// the pool and closes connections.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.echo.Shutdown(ctx); err != nil {
		return err
	}
	a.pool.Close()
	return a.infra.Close(ctx)
}
