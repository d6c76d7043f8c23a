package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache. The clock is injectable so tests can move
// time forward past a TTL.
type Memory struct {
	mu            sync.Mutex
	entries       map[string]memoryEntry
	now           func() time.Time
	maxEntryBytes int
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithMaxEntryBytes rejects values larger than n bytes with ErrValueTooLarge.
// Zero disables the limit.
func WithMaxEntryBytes(n int) MemoryOption {
	return func(m *Memory) { m.maxEntryBytes = n }
}

// NewMemory creates an empty in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ Cache = (*Memory)(nil)

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Put implements Cache.
func (m *Memory) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.maxEntryBytes > 0 && len(value) > m.maxEntryBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrValueTooLarge, len(value), m.maxEntryBytes)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

// Remove implements Cache.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
