package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/cognitive-insights/pkg/retry"
)

// newOfflineCache returns a cache whose client is never dialed by the
// argument checks under test.
func newOfflineCache(t *testing.T) *Cache {
	t.Helper()
	c := NewCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewCacheFromURL_InvalidURL(t *testing.T) {
	_, err := NewCacheFromURL(context.Background(), "http://localhost:6379", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheConnection)
	assert.True(t, retry.IsPermanent(err))
}

func TestCache_ArgumentChecks(t *testing.T) {
	c := newOfflineCache(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.Set(ctx, "", 1, time.Minute), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, time.Minute), ErrCacheNilValue)
	assert.ErrorIs(t, c.Set(ctx, "k", 1, -time.Second), ErrCacheInvalidTTL)
	assert.ErrorIs(t, c.Set(ctx, "k", make(chan int), time.Minute), ErrCacheSerialization)

	var dest int
	assert.ErrorIs(t, c.Get(ctx, "", &dest), ErrCacheKeyEmpty)

	_, err := c.DeleteByPattern(ctx, "")
	assert.ErrorIs(t, err, ErrCacheKeyEmpty)
}

func TestChartCache(t *testing.T) {
	assert.Equal(t, "insights:charts:seed:42:size:100", ChartKey("seed:42:size:100"))

	cc := NewChartCache(newOfflineCache(t))
	assert.ErrorIs(t, cc.SetCharts(context.Background(), "k", nil, time.Minute), ErrCacheNilValue)
}
