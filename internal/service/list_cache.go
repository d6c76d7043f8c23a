package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/knowledgeboard/knowledge-server/internal/cache"
	"github.com/knowledgeboard/knowledge-server/internal/domain"
)

// Cache settings for the assembled list.
const (
	ListCacheKey   = "knowledge_list_cache"
	DefaultListTTL = 6 * time.Hour
)

// ListCache stores the full, unfiltered knowledge list under a single key.
// Backend failures are logged and reported as a miss; the cache is never
// required for a correct answer.
type ListCache struct {
	backend cache.Cache
	ttl     time.Duration
	logger  *slog.Logger
}

// NewListCache wraps backend. A non-positive ttl means DefaultListTTL.
func NewListCache(backend cache.Cache, ttl time.Duration, logger *slog.Logger) *ListCache {
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	return &ListCache{backend: backend, ttl: ttl, logger: logger}
}

// Get returns the cached list, or false on a miss or any backend error.
func (c *ListCache) Get(ctx context.Context) ([]domain.Knowledge, bool) {
	data, ok, err := c.backend.Get(ctx, ListCacheKey)
	if err != nil {
		c.logger.Warn("list cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var list []domain.Knowledge
	if err := json.Unmarshal(data, &list); err != nil {
		c.logger.Warn("list cache entry unreadable", "error", err)
		return nil, false
	}
	return list, true
}

// Put stores list. Empty lists are not cached.
func (c *ListCache) Put(ctx context.Context, list []domain.Knowledge) {
	if len(list) == 0 {
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		c.logger.Warn("list cache encode failed", "error", err)
		return
	}
	if err := c.backend.Put(ctx, ListCacheKey, data, c.ttl); err != nil {
		c.logger.Warn("list cache write failed", "error", err, "bytes", len(data))
	}
}

// Invalidate drops the cached list.
func (c *ListCache) Invalidate(ctx context.Context) {
	if err := c.backend.Remove(ctx, ListCacheKey); err != nil {
		c.logger.Warn("list cache invalidation failed", "error", err)
		return
	}
	c.logger.Debug("list cache cleared")
}
