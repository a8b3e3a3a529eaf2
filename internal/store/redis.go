package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"scoreapi/pkg/platform/sentinel"
)

// RedisKV is an authoritative KV backed by plain Redis strings.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) (*RedisKV, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisKV{client: client}, nil
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}

// RedisCache stores JSON encoded records and lets Redis expire them.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps client. prefix namespaces cache keys when the cache
// shares a database with the authoritative store.
func NewRedisCache(client *redis.Client, prefix string) (*RedisCache, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisCache{client: client, prefix: prefix}, nil
}

func (r *RedisCache) Load(ctx context.Context, key string) (Record, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("redis cache get: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("decode cache record: %w", err)
	}
	return rec, nil
}

// StoreIfAbsent relies on SET NX: an unexpired key blocks the write and an
// expired key has already been evicted by Redis.
func (r *RedisCache) StoreIfAbsent(ctx context.Context, key string, rec Record, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encode cache record: %w", err)
	}
	ok, err := r.client.SetNX(ctx, r.prefix+key, raw, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis cache set: %w", err)
	}
	return ok, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
