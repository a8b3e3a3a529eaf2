// Package store provides the key-value store consulted by the business
// handlers: an authoritative KV backend with retries, fronted by a TTL cache
// with write-once-per-window semantics.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"scoreapi/internal/platform/metrics"
	"scoreapi/pkg/platform/sentinel"
)

// KV is an authoritative key-value backend. Get returns sentinel.ErrNotFound
// (possibly wrapped) for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}

// Cache holds TTL records. Load returns sentinel.ErrNotFound for a missing key.
// StoreIfAbsent writes rec only when no unexpired record occupies key and
// reports whether it wrote.
type Cache interface {
	Load(ctx context.Context, key string) (Record, error)
	StoreIfAbsent(ctx context.Context, key string, rec Record, ttl time.Duration) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// Record is one cached value and the end of its TTL window.
type Record struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Fresh reports whether the record's window is still open at now.
func (r Record) Fresh(now time.Time) bool {
	return now.Before(r.ExpiresAt)
}

var tracer = otel.Tracer("scoreapi/internal/store")

// Store combines an authoritative KV with a TTL cache.
type Store struct {
	kv       KV
	cache    Cache
	attempts int
	backoff  time.Duration
	reseed   time.Duration
	clock    func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithRetry sets the total number of attempts and the initial backoff for
// authoritative operations. The backoff doubles between attempts.
func WithRetry(attempts int, initial time.Duration) Option {
	return func(s *Store) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if initial > 0 {
			s.backoff = initial
		}
	}
}

// WithReseedTTL sets how long a value read through CacheGet's fallback stays
// cached.
func WithReseedTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.reseed = ttl
		}
	}
}

// WithClock sets the clock used for cache freshness.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New builds a Store. Both backends are required.
func New(kv KV, cache Cache, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, errors.New("kv backend is required")
	}
	if cache == nil {
		return nil, errors.New("cache backend is required")
	}
	s := &Store{
		kv:       kv,
		cache:    cache,
		attempts: 3,
		backoff:  100 * time.Millisecond,
		reseed:   time.Hour,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Get reads key from the authoritative backend, retrying transient failures.
// A missing key yields sentinel.ErrNotFound without retries; exhausted retries
// yield an error wrapping sentinel.ErrUnavailable.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	ctx, span := tracer.Start(ctx, "store.get", trace.WithAttributes(attribute.String("store.key", key)))
	defer span.End()

	var value string
	err := s.retry(ctx, func() error {
		v, err := s.kv.Get(ctx, key)
		if errors.Is(err, sentinel.ErrNotFound) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	switch {
	case err == nil:
		s.metrics.IncrementStoreOp("get", "ok")
		return value, nil
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.IncrementStoreOp("get", "miss")
		return "", err
	default:
		s.metrics.IncrementStoreOp("get", "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "get failed")
		return "", fmt.Errorf("get %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
}

// Set writes key to the authoritative backend, retrying transient failures.
func (s *Store) Set(ctx context.Context, key, value string) error {
	ctx, span := tracer.Start(ctx, "store.set", trace.WithAttributes(attribute.String("store.key", key)))
	defer span.End()

	err := s.retry(ctx, func() error {
		return s.kv.Set(ctx, key, value)
	})
	if err != nil {
		s.metrics.IncrementStoreOp("set", "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "set failed")
		return fmt.Errorf("set %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	s.metrics.IncrementStoreOp("set", "ok")
	return nil
}

// CacheGet returns a fresh cached value, falling back to the authoritative
// backend when the record is absent or expired. A fallback hit re-seeds the
// cache. It never fails: any backend error is logged and reported as a miss.
func (s *Store) CacheGet(ctx context.Context, key string) (string, bool) {
	ctx, span := tracer.Start(ctx, "store.cache_get", trace.WithAttributes(attribute.String("store.key", key)))
	defer span.End()

	rec, err := s.cache.Load(ctx, key)
	switch {
	case err == nil && rec.Fresh(s.clock()):
		s.metrics.IncrementCacheLookup("hit")
		return rec.Value, true
	case err != nil && !errors.Is(err, sentinel.ErrNotFound):
		s.metrics.IncrementStoreOp("cache_get", "error")
		s.logger.WarnContext(ctx, "cache read failed, falling back to store",
			"key", key,
			"error", err,
		)
	}

	value, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "store read failed, treating as cache miss",
				"key", key,
				"error", err,
			)
		}
		s.metrics.IncrementCacheLookup("miss")
		return "", false
	}
	s.metrics.IncrementCacheLookup("fallback")
	_ = s.storeRecord(ctx, key, value, s.reseed)
	return value, true
}

// CacheSet stores value for ttl unless a fresh record already occupies key, in
// which case the existing value is kept. Failures are logged and swallowed.
func (s *Store) CacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	ctx, span := tracer.Start(ctx, "store.cache_set", trace.WithAttributes(attribute.String("store.key", key)))
	defer span.End()

	if err := s.storeRecord(ctx, key, value, ttl); err != nil {
		span.RecordError(err)
	}
}

func (s *Store) storeRecord(ctx context.Context, key, value string, ttl time.Duration) error {
	rec := Record{Value: value, ExpiresAt: s.clock().Add(ttl)}
	written, err := s.cache.StoreIfAbsent(ctx, key, rec, ttl)
	if err != nil {
		s.metrics.IncrementStoreOp("cache_set", "error")
		s.logger.WarnContext(ctx, "cache write failed",
			"key", key,
			"error", err,
		)
		return err
	}
	if !written {
		s.metrics.IncrementStoreOp("cache_set", "kept")
		return nil
	}
	s.metrics.IncrementStoreOp("cache_set", "ok")
	return nil
}

// Ping checks both backends.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.kv.Ping(ctx); err != nil {
		return fmt.Errorf("store ping: %w", err)
	}
	if err := s.cache.Ping(ctx); err != nil {
		return fmt.Errorf("cache ping: %w", err)
	}
	return nil
}

// Close releases both backends.
func (s *Store) Close() error {
	return errors.Join(s.kv.Close(), s.cache.Close())
}

func (s *Store) retry(ctx context.Context, op func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.backoff
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(s.attempts-1)), ctx)
	return backoff.Retry(op, b)
}
