package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// PIIFields are the log field names whose values are masked.
	PIIFields []string `env:"PII_FIELDS, default=name,email,phone,ssn,password"`

	Auth  AuthConfig
	Store StoreConfig
	Hash  HashConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	Type         string `env:"AUTH_TYPE,     default=session"`
	SessionName  string `env:"SESSION_NAME,  default=session_id"`
	CookieSecure bool   `env:"COOKIE_SECURE, default=false"`
	// SessionDuration is read as text so that a malformed value disables
	// expiry instead of failing startup. See SessionTTL.
	SessionDuration string   `env:"SESSION_DURATION"`
	ExcludedPaths   []string `env:"EXCLUDED_PATHS, default=/api/v1/status/,/api/v1/unauthorized/,/api/v1/forbidden/,/api/v1/auth_session/login/"`
}

type StoreConfig struct {
	Sessions string `env:"SESSION_STORE, default=memory"`
	Users    string `env:"USER_STORE,    default=memory"`
}

type HashConfig struct {
	Algorithm      string `env:"PASSWORD_HASHER,  default=bcrypt"`
	BcryptCost     int    `env:"BCRYPT_COST,      default=10"`
	Argon2Time     uint32 `env:"ARGON2_TIME,      default=1"`
	Argon2MemoryKB uint32 `env:"ARGON2_MEMORY_KB, default=65536"`
	Argon2Threads  uint8  `env:"ARGON2_THREADS,   default=4"`
	// Workers bounds concurrent hash operations; 0 means one per CPU.
	Workers int `env:"HASH_WORKERS, default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth_system"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// SessionTTL parses SESSION_DURATION as whole seconds or, failing that, as a
// Go duration. Anything else, including an empty value, yields 0 (no expiry).
func (a AuthConfig) SessionTTL() time.Duration {
	raw := strings.TrimSpace(a.SessionDuration)
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return 0
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom is Load with an explicit source of variables.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Sessions {
	case "memory", "redis", "user":
	default:
		return fmt.Errorf("SESSION_STORE: unknown store %q", c.Store.Sessions)
	}
	switch c.Store.Users {
	case "memory", "mongo":
	default:
		return fmt.Errorf("USER_STORE: unknown store %q", c.Store.Users)
	}
	switch c.Hash.Algorithm {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("PASSWORD_HASHER: unknown algorithm %q", c.Hash.Algorithm)
	}
	if c.Auth.SessionName == "" {
		return fmt.Errorf("SESSION_NAME: must not be empty")
	}
	return nil
}
