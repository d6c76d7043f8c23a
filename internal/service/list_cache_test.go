package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledgeboard/knowledge-server/internal/cache"
	"github.com/knowledgeboard/knowledge-server/internal/domain"
	"github.com/knowledgeboard/knowledge-server/internal/logger"
)

// brokenCache fails every call.
type brokenCache struct{}

var errBackendDown = errors.New("backend down")

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errBackendDown }
func (brokenCache) Put(context.Context, string, []byte, time.Duration) error {
	return errBackendDown
}
func (brokenCache) Remove(context.Context, string) error { return errBackendDown }

func TestListCache_PutGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewListCache(cache.NewMemory(), 0, logger.Discard())

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	list := []domain.Knowledge{{ID: 1, Title: "a", Tags: []string{"x"}, Comments: []domain.KnowledgeComment{}}}
	c.Put(ctx, list)

	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, []string{"x"}, got[0].Tags)

	c.Invalidate(ctx)
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}

func TestListCache_SkipsEmptyList(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()
	c := NewListCache(backend, 0, logger.Discard())

	c.Put(ctx, []domain.Knowledge{})

	_, ok, err := backend.Get(ctx, ListCacheKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListCache_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	now := t0
	backend := cache.NewMemory(cache.WithClock(func() time.Time { return now }))
	c := NewListCache(backend, time.Hour, logger.Discard())

	c.Put(ctx, []domain.Knowledge{{ID: 1}})
	_, ok := c.Get(ctx)
	assert.True(t, ok)

	now = now.Add(time.Hour)
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}

func TestListCache_DefaultTTL(t *testing.T) {
	c := NewListCache(cache.NewMemory(), -time.Second, logger.Discard())
	assert.Equal(t, DefaultListTTL, c.ttl)
	assert.Equal(t, 6*time.Hour, DefaultListTTL)
}

func TestListCache_AbsorbsBackendErrors(t *testing.T) {
	ctx := context.Background()
	c := NewListCache(brokenCache{}, 0, logger.Discard())

	assert.NotPanics(t, func() {
		c.Put(ctx, []domain.Knowledge{{ID: 1}})
		c.Invalidate(ctx)
	})
	_, ok := c.Get(ctx)
	assert.False(t, ok)
}

func TestListCache_OversizedValueIsNoop(t *testing.T) {
	ctx := context.Background()
	c := NewListCache(cache.NewMemory(cache.WithMaxEntryBytes(16)), 0, logger.Discard())

	c.Put(ctx, []domain.Knowledge{{ID: 1, Title: "long enough to exceed sixteen bytes"}})

	_, ok := c.Get(ctx)
	assert.False(t, ok)
}

func TestListCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()
	require.NoError(t, backend.Put(ctx, ListCacheKey, []byte("{not json"), time.Hour))

	c := NewListCache(backend, 0, logger.Discard())
	_, ok := c.Get(ctx)
	assert.False(t, ok)
}
