package cohort

import (
	"context"
	"time"
)

// ChartCache stores chart projections of reproducible populations.
// Populations synthesized from a fresh random source must never be cached.
type ChartCache interface {
	// GetCharts returns the cached charts for key, or (nil, nil) on a miss.
	GetCharts(ctx context.Context, key string) (*ChartData, error)

	// SetCharts stores charts under key for ttl.
	SetCharts(ctx context.Context, key string, charts *ChartData, ttl time.Duration) error
}
