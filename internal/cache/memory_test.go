package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestMemory_PutGetRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Put(ctx, "k", []byte("v"), time.Hour))
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, m.Remove(ctx, "k"))
	require.NoError(t, m.Remove(ctx, "k"), "removing twice is fine")
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory(WithClock(clock.Now))

	require.NoError(t, m.Put(ctx, "k", []byte("v"), 6*time.Hour))

	clock.Advance(6*time.Hour - time.Second)
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok, "still fresh just before the TTL")

	clock.Advance(time.Second)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok, "expired at the TTL")
}

func TestMemory_MaxEntryBytes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithMaxEntryBytes(4))

	err := m.Put(ctx, "k", []byte("too long"), time.Hour)
	assert.ErrorIs(t, err, ErrValueTooLarge)

	require.NoError(t, m.Put(ctx, "k", []byte("ok"), time.Hour))
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", in, time.Hour))
	in[0] = 'z'

	out, _, _ := m.Get(ctx, "k")
	out[1] = 'z'

	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}
