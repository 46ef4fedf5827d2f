package redis

import (
	"context"
	"errors"
	"time"

	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
)

// ChartCache implements cohort.ChartCache.
type ChartCache struct {
	cache *Cache
}

// NewChartCache creates a chart cache backed by c.
func NewChartCache(c *Cache) *ChartCache {
	return &ChartCache{cache: c}
}

// ChartKey returns the Redis key for a chart payload.
func ChartKey(key string) string {
	return PrefixCharts + key
}

// GetCharts returns nil, nil on a miss.
func (c *ChartCache) GetCharts(ctx context.Context, key string) (*cohort.ChartData, error) {
	var charts cohort.ChartData
	if err := c.cache.Get(ctx, ChartKey(key), &charts); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &charts, nil
}

// SetCharts stores charts for ttl.
func (c *ChartCache) SetCharts(ctx context.Context, key string, charts *cohort.ChartData, ttl time.Duration) error {
	if charts == nil {
		return ErrCacheNilValue
	}
	return c.cache.Set(ctx, ChartKey(key), charts, ttl)
}

// Invalidate drops every cached chart payload.
func (c *ChartCache) Invalidate(ctx context.Context) (int, error) {
	return c.cache.DeleteByPattern(ctx, PrefixCharts+"*")
}
