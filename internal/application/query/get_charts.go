package query

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
	"github.com/alem-hub/cognitive-insights/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CHARTS QUERY
// Chart projection of a synthesized population. Submissions are excluded.
// Reproducible populations are served from the chart cache when one is set.
// ══════════════════════════════════════════════════════════════════════════════

// GetChartsHandler handles chart requests.
type GetChartsHandler struct {
	builder *PopulationBuilder
	cache   cohort.ChartCache
	ttl     time.Duration
	logger  *logger.Logger
}

// NewGetChartsHandler creates a new handler. cache may be nil.
func NewGetChartsHandler(builder *PopulationBuilder, cache cohort.ChartCache, ttl time.Duration, log *logger.Logger) *GetChartsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GetChartsHandler{
		builder: builder,
		cache:   cache,
		ttl:     ttl,
		logger:  log.With(logger.Component("charts")),
	}
}

// Handle returns the chart data.
func (h *GetChartsHandler) Handle(ctx context.Context) (*cohort.ChartData, error) {
	key, cacheable := h.cacheKey()

	// Cache read failures degrade to recomputation.
	if cacheable {
		cached, err := h.cache.GetCharts(ctx, key)
		if err != nil {
			h.logger.Warn("chart cache read failed", logger.Err(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	population, err := h.builder.Build(ctx, BuildOptions{WithSubmissions: false})
	if err != nil {
		return nil, err
	}

	stats, err := cohort.Aggregate(population)
	if err != nil {
		return nil, err
	}
	charts := stats.Charts()

	if cacheable {
		if err := h.cache.SetCharts(ctx, key, &charts, h.ttl); err != nil {
			h.logger.Warn("chart cache write failed", logger.Err(err))
		}
	}

	return &charts, nil
}

func (h *GetChartsHandler) cacheKey() (string, bool) {
	if h.cache == nil || h.ttl <= 0 || !h.builder.Reproducible() {
		return "", false
	}
	cfg := h.builder.Config()
	return fmt.Sprintf("seed:%d:size:%d", cfg.Seed, cfg.Size), true
}
