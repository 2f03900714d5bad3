package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-authgate/stravaexport/internal/core"
)

var _ core.Cache[struct{}] = (*MemoryCache[struct{}])(nil)

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e memoryEntry[T]) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// MemoryOption configures a MemoryCache
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	maxEntries int
}

// WithMaxEntries bounds the number of stored keys. Zero means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(c *memoryConfig) { c.maxEntries = n }
}

// MemoryCache is a process-local cache. Expired keys are dropped on read,
// and when the cache is full a write first sweeps expired keys and then
// evicts the key closest to expiry.
type MemoryCache[T any] struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry[T]
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache creates an empty cache
func NewMemoryCache[T any](opts ...MemoryOption) *MemoryCache[T] {
	cfg := memoryConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MemoryCache[T]{
		entries:    make(map[string]memoryEntry[T]),
		maxEntries: cfg.maxEntries,
		now:        time.Now,
	}
}

func (m *MemoryCache[T]) Get(_ context.Context, key string) (T, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || entry.expired(m.now()) {
		var zero T
		return zero, ErrCacheMiss
	}
	return entry.value, nil
}

func (m *MemoryCache[T]) Set(_ context.Context, key string, value T, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if _, exists := m.entries[key]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.makeRoomLocked(now)
	}
	m.entries[key] = memoryEntry[T]{value: value, expiresAt: now.Add(ttl)}
	return nil
}

// makeRoomLocked frees at least one slot. Caller holds mu.
func (m *MemoryCache[T]) makeRoomLocked(now time.Time) {
	var (
		victim     string
		victimExp  time.Time
		haveVictim bool
	)
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
			continue
		}
		if !haveVictim || e.expiresAt.Before(victimExp) {
			victim, victimExp, haveVictim = k, e.expiresAt, true
		}
	}
	if len(m.entries) >= m.maxEntries && haveVictim {
		delete(m.entries, victim)
	}
}

func (m *MemoryCache[T]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len counts stored keys, including expired ones not yet swept
func (m *MemoryCache[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close drops every entry; the cache stays usable afterwards
func (m *MemoryCache[T]) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry[T])
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[T]) Health(context.Context) error { return nil }

// GetWithFetch has no stampede protection; concurrent misses each call fetch.
func (m *MemoryCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context, key string) (T, error),
) (T, error) {
	return fetchThrough[T](ctx, m, key, ttl, fetch)
}
