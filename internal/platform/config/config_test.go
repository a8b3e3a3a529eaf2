package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, BackendRedis, cfg.Store.CacheBackend)
	assert.Equal(t, 3, cfg.Store.Attempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Store.Backoff)
	assert.Equal(t, "Otus", cfg.Auth.Salt)
	assert.Equal(t, "42", cfg.Auth.AdminSalt)
	assert.Equal(t, time.Hour, cfg.Handlers.ScoreCacheTTL)
	assert.Equal(t, 8, cfg.Handlers.InterestsConcurrency)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SCOREAPI_ADDR", ":9090")
	t.Setenv("SCOREAPI_STORE_BACKEND", "memory")
	t.Setenv("SCOREAPI_CACHE_BACKEND", "memory")
	t.Setenv("SCOREAPI_STORE_ATTEMPTS", "5")
	t.Setenv("SCOREAPI_SCORE_CACHE_TTL", "90s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 5, cfg.Store.Attempts)
	assert.Equal(t, 90*time.Second, cfg.Handlers.ScoreCacheTTL)
}

func TestValidate(t *testing.T) {
	valid := func() Server {
		return Server{
			Store:    StoreConfig{Backend: BackendMemory, CacheBackend: BackendMemory, Attempts: 1},
			Auth:     AuthConfig{Salt: "Otus", AdminSalt: "42"},
			Handlers: HandlersConfig{InterestsConcurrency: 1},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("postgres backend requires dsn", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Backend = BackendPostgres
		assert.ErrorContains(t, cfg.Validate(), "SCOREAPI_POSTGRES_DSN")
		cfg.Store.PostgresDSN = "postgres://localhost/scoreapi"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown backends rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Backend = "etcd"
		assert.ErrorContains(t, cfg.Validate(), "unknown store backend")

		cfg = valid()
		cfg.Store.CacheBackend = "postgres"
		assert.ErrorContains(t, cfg.Validate(), "unknown cache backend")
	})

	t.Run("zero attempts rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Attempts = 0
		assert.Error(t, cfg.Validate())
	})
}
