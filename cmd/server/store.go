package main

import (
	"context"
	"fmt"
	"log/slog"

	"scoreapi/internal/platform/config"
	"scoreapi/internal/platform/metrics"
	"scoreapi/internal/platform/postgres"
	"scoreapi/internal/platform/redis"
	"scoreapi/internal/store"
)

// cacheKeyPrefix keeps cache records apart from authoritative keys when both
// backends point at the same Redis database.
const cacheKeyPrefix = "cache:"

// buildStore connects the configured authoritative backend and cache.
func buildStore(ctx context.Context, cfg config.Server, log *slog.Logger, m *metrics.Metrics) (*store.Store, error) {
	ctx, cancel := contextWithTimeout(ctx, cfg.Store.Timeout)
	defer cancel()

	kv, err := buildKV(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	cache, err := buildCache(ctx, cfg.Store)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	return store.New(kv, cache,
		store.WithRetry(cfg.Store.Attempts, cfg.Store.Backoff),
		store.WithReseedTTL(cfg.Handlers.ScoreCacheTTL),
		store.WithLogger(log),
		store.WithMetrics(m),
	)
}

func buildKV(ctx context.Context, cfg config.StoreConfig) (store.KV, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		client, err := redis.New(ctx, redis.Options{URL: cfg.RedisURL, PoolSize: cfg.PoolSize, Timeout: cfg.Timeout})
		if err != nil {
			return nil, fmt.Errorf("store redis: %w", err)
		}
		return store.NewRedisKV(client)
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		kv, err := store.NewPostgresKV(db)
		if err != nil {
			return nil, err
		}
		if err := kv.EnsureSchema(ctx); err != nil {
			_ = kv.Close()
			return nil, err
		}
		return kv, nil
	case config.BackendMemory:
		return store.NewMemoryKV(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

func buildCache(ctx context.Context, cfg config.StoreConfig) (store.Cache, error) {
	switch cfg.CacheBackend {
	case config.BackendRedis:
		client, err := redis.New(ctx, redis.Options{URL: cfg.CacheRedisURL, PoolSize: cfg.PoolSize, Timeout: cfg.Timeout})
		if err != nil {
			return nil, fmt.Errorf("cache redis: %w", err)
		}
		return store.NewRedisCache(client, cacheKeyPrefix)
	case config.BackendMemory:
		return store.NewMemoryCache(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
}
