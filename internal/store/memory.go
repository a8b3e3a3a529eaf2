package store

import (
	"context"
	"sync"
	"time"

	"scoreapi/pkg/platform/sentinel"
)

// MemoryKV is an in-process authoritative store for development and tests.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryKV) Ping(context.Context) error { return nil }

func (m *MemoryKV) Close() error { return nil }

// MemoryCache keeps TTL records in process. Expired records are dropped lazily.
type MemoryCache struct {
	mu      sync.Mutex
	records map[string]Record
	clock   func() time.Time
}

type MemoryCacheOption func(*MemoryCache)

// WithCacheClock overrides the clock used to judge expiry.
func WithCacheClock(clock func() time.Time) MemoryCacheOption {
	return func(m *MemoryCache) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func NewMemoryCache(opts ...MemoryCacheOption) *MemoryCache {
	m := &MemoryCache{
		records: make(map[string]Record),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryCache) Load(_ context.Context, key string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok {
		return Record{}, sentinel.ErrNotFound
	}
	if !rec.Fresh(m.clock()) {
		delete(m.records, key)
		return Record{}, sentinel.ErrNotFound
	}
	return rec, nil
}

func (m *MemoryCache) StoreIfAbsent(_ context.Context, key string, rec Record, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[key]; ok && existing.Fresh(m.clock()) {
		return false, nil
	}
	m.records[key] = rec
	return true, nil
}

func (m *MemoryCache) Ping(context.Context) error { return nil }

func (m *MemoryCache) Close() error { return nil }
