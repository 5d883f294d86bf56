package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/auth-system/internal/api/handler"
	mongostore "github.com/99minutos/auth-system/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/auth-system/internal/infrastructure/db/redis"
	"github.com/99minutos/auth-system/internal/pkg/config"
)

// Infra holds the external connections. Each one is only opened when the
// configuration selects a store that needs it.
type Infra struct {
	Mongo *mongo.Client
	DB    *mongo.Database
	Redis *goredis.Client
}

func setupInfra(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Infra, error) {
	infra := &Infra{}

	if cfg.Store.Users == "mongo" {
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "auth-system",
		})
		if err != nil {
			return nil, err
		}
		infra.Mongo, infra.DB = client, db
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo ready")
	}

	if cfg.Store.Sessions == "redis" {
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = infra.Close(ctx)
			return nil, err
		}
		infra.Redis = client
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis ready")
	}

	return infra, nil
}

// Checks lists the readiness probes of the open connections.
func (i *Infra) Checks() []handler.DependencyCheck {
	var checks []handler.DependencyCheck
	if i.Mongo != nil {
		checks = append(checks, handler.DependencyCheck{Name: "mongo", Ping: mongostore.Pinger(i.Mongo)})
	}
	if i.Redis != nil {
		checks = append(checks, handler.DependencyCheck{Name: "redis", Ping: redisstore.Pinger(i.Redis)})
	}
	return checks
}

func (i *Infra) Close(ctx context.Context) error {
	var firstErr error
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			firstErr = fmt.Errorf("close redis: %w", err)
		}
	}
	if i.Mongo != nil {
		if err := i.Mongo.Disconnect(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close mongo: %w", err)
		}
	}
	return firstErr
}
