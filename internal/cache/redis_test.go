package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(context.Background(), "", "kb:")
	assert.Error(t, err)
}

func TestRedis_UnreachableServerReturnsErrors(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	r := NewRedisFromClient(rdb, "kb:")
	t.Cleanup(func() { r.Close() })

	ctx := context.Background()

	_, ok, err := r.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)

	assert.Error(t, r.Put(ctx, "k", []byte("v"), time.Minute))
	assert.Error(t, r.Remove(ctx, "k"))
}
