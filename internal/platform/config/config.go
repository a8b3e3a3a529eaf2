package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Store backend names.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Server captures process level configuration. Defaults live in the env tags.
type Server struct {
	Addr     string `env:"SCOREAPI_ADDR,default=:8080"`
	LogLevel string `env:"SCOREAPI_LOG_LEVEL,default=info"`
	LogFile  string `env:"SCOREAPI_LOG_FILE"`

	Store    StoreConfig
	Auth     AuthConfig
	Handlers HandlersConfig
}

// StoreConfig selects and tunes the authoritative store and its cache.
type StoreConfig struct {
	Backend      string `env:"SCOREAPI_STORE_BACKEND,default=redis"`
	CacheBackend string `env:"SCOREAPI_CACHE_BACKEND,default=redis"`

	RedisURL      string `env:"SCOREAPI_STORE_REDIS_URL,default=redis://127.0.0.1:6379/0"`
	CacheRedisURL string `env:"SCOREAPI_CACHE_REDIS_URL,default=redis://127.0.0.1:6379/1"`
	PostgresDSN   string `env:"SCOREAPI_POSTGRES_DSN"`

	// Attempts is the total number of tries per authoritative operation.
	Attempts int           `env:"SCOREAPI_STORE_ATTEMPTS,default=3"`
	Backoff  time.Duration `env:"SCOREAPI_STORE_BACKOFF,default=100ms"`
	Timeout  time.Duration `env:"SCOREAPI_STORE_TIMEOUT,default=10s"`
	PoolSize int           `env:"SCOREAPI_STORE_POOL_SIZE,default=10"`
}

// AuthConfig carries the token salts. They are fixed for the process lifetime.
type AuthConfig struct {
	Salt      string `env:"SCOREAPI_SALT,default=Otus"`
	AdminSalt string `env:"SCOREAPI_ADMIN_SALT,default=42"`
}

// HandlersConfig tunes the business handlers.
type HandlersConfig struct {
	ScoreCacheTTL        time.Duration `env:"SCOREAPI_SCORE_CACHE_TTL,default=1h"`
	InterestsConcurrency int           `env:"SCOREAPI_INTERESTS_CONCURRENCY,default=8"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Server{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c Server) Validate() error {
	switch c.Store.Backend {
	case BackendRedis, BackendMemory:
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("config: SCOREAPI_POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	switch c.Store.CacheBackend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("config: unknown cache backend %q", c.Store.CacheBackend)
	}
	if c.Store.Attempts < 1 {
		return errors.New("config: store attempts must be at least 1")
	}
	if c.Handlers.InterestsConcurrency < 1 {
		return errors.New("config: interests concurrency must be at least 1")
	}
	if c.Auth.Salt == "" || c.Auth.AdminSalt == "" {
		return errors.New("config: salts must not be empty")
	}
	return nil
}
