// Package main is the entry point of the Cognitive Insights dashboard API.
//
// The service synthesizes a cohort of student learning records, classifies
// every record into a learning persona and serves the population, its
// aggregate statistics and chart projections over HTTP. It also accepts
// project submissions under an instructor-configured deadline policy.
//
// Storage is in-memory unless DATABASE_URL is set, in which case submissions
// and settings live in PostgreSQL. REDIS_URL enables the chart cache for
// seeded populations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alem-hub/cognitive-insights/config"

	// Application layer
	"github.com/alem-hub/cognitive-insights/internal/application/command"
	"github.com/alem-hub/cognitive-insights/internal/application/query"

	// Domain layer
	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
	"github.com/alem-hub/cognitive-insights/internal/domain/submission"

	// Infrastructure layer
	"github.com/alem-hub/cognitive-insights/internal/infrastructure/metrics"
	"github.com/alem-hub/cognitive-insights/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/cognitive-insights/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/cognitive-insights/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/alem-hub/cognitive-insights/internal/interface/http"
	"github.com/alem-hub/cognitive-insights/internal/interface/http/handlers"

	// Packages
	"github.com/alem-hub/cognitive-insights/pkg/logger"
	"github.com/alem-hub/cognitive-insights/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	defer func() { _ = log.Sync() }()

	log.Info("starting Cognitive Insights dashboard",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("timezone", cfg.App.Timezone),
		logger.PopulationSize(cfg.Cohort.Size),
		logger.Seed(cfg.Cohort.Seed),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. METRICS
	// ─────────────────────────────────────────────────────────────────────────
	var reg *metrics.Registry
	if cfg.Observability.MetricsEnabled {
		reg = metrics.New()
	}

	health := handlers.NewCompositeHealthChecker(cfg.App.Version)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	subsRepo, settingsRepo, closeStore, err := setupStore(ctx, cfg, log, health)
	if err != nil {
		return err
	}
	defer closeStore()

	if reg != nil {
		if err := reg.SyncStoredSubmissions(ctx, subsRepo); err != nil {
			log.Warn("could not seed submission metrics", logger.Err(err))
		}
	}

	chartCache, closeCache := setupChartCache(ctx, cfg, log, health)
	defer closeCache()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	var popObserver query.PopulationObserver
	submitOpts := []command.SubmitProjectOption{}
	if reg != nil {
		popObserver = reg
		submitOpts = append(submitOpts, command.WithSubmissionObserver(reg))
	}

	builder := query.NewPopulationBuilder(query.PopulationConfig{
		Size:               cfg.Cohort.Size,
		Seed:               cfg.Cohort.Seed,
		DatasetPath:        cfg.Cohort.DatasetPath,
		IncludeSubmissions: cfg.Cohort.IncludeSubmissions,
	}, subsRepo, popObserver, log)

	clock := func() time.Time { return time.Now().In(cfg.App.Location) }

	deps := httpserver.Dependencies{
		GetStudentsHandler:     query.NewGetStudentsHandler(builder),
		GetStudentHandler:      query.NewGetStudentHandler(builder),
		GetChartsHandler:       query.NewGetChartsHandler(builder, chartCache, cfg.Cohort.ChartCacheTTL, log),
		PredictScoreHandler:    query.NewPredictScoreHandler(),
		ListSubmissionsHandler: query.NewListSubmissionsHandler(subsRepo),
		GetSettingsHandler:     query.NewGetSettingsHandler(settingsRepo, clock),
		SubmitProjectHandler:   command.NewSubmitProjectHandler(subsRepo, settingsRepo, cfg.App.Location, log, submitOpts...),
		UpdateSettingsHandler:  command.NewUpdateSettingsHandler(settingsRepo, clock, log),
		Logger:                 log,
		HealthChecker:          health,
	}
	if reg != nil {
		deps.MetricsHandler = reg.Handler()
		deps.RequestObserver = reg
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	srvCfg := httpserver.DefaultConfig()
	srvCfg.Host = cfg.HTTP.Host
	srvCfg.Port = cfg.HTTP.Port
	srvCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	srvCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	srvCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	srvCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	srvCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	srvCfg.Version = cfg.App.Version

	server := httpserver.NewServer(srvCfg, deps)
	serverErr := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. WAIT FOR SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", logger.Err(err))
		return err
	}

	log.Info("shutdown complete")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SETUP HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	if cfg.Observability.LogFormat == string(logger.FormatConsole) {
		opts.Format = logger.FormatConsole
	}
	return logger.New(opts).Named("dashboard")
}

func startupPolicy(log *logger.Logger, service string) retry.Policy {
	p := retry.StartupPolicy()
	p.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn("backing service not ready, retrying",
			logger.Component(service),
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
	}
	return p
}

// setupStore selects PostgreSQL when a database URL is configured and the
// in-memory stores otherwise.
func setupStore(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	health *handlers.CompositeHealthChecker,
) (submission.Repository, submission.SettingsRepository, func(), error) {
	if cfg.Database.URL == "" {
		log.Info("using in-memory submission store")
		return memory.NewSubmissionRepository(), memory.NewSettingsRepository(), func() {}, nil
	}

	opts := postgres.DefaultPoolOptions()
	if cfg.Database.MaxOpenConns > 0 {
		opts.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		opts.MinConns = min(int32(cfg.Database.MaxIdleConns), opts.MaxConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		opts.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	}
	if cfg.Database.ConnMaxIdleTime > 0 {
		opts.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	}
	if cfg.Database.QueryTimeout > 0 {
		opts.QueryTimeout = cfg.Database.QueryTimeout
	}

	conn, err := retry.Value(ctx, startupPolicy(log, "postgres"), func(ctx context.Context) (*postgres.Connection, error) {
		return postgres.Connect(ctx, cfg.Database.URL, opts)
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	applied, err := postgres.NewMigrator(conn).Migrate(ctx)
	if err != nil {
		conn.Close()
		return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	stats := conn.Stats()
	log.Info("connected to PostgreSQL",
		logger.Int("migrations_applied", applied),
		logger.Int("max_conns", int(stats.MaxConns)),
	)

	health.AddCheck("database", handlers.NewPingCheck(conn))

	return postgres.NewSubmissionRepository(conn), postgres.NewSettingsRepository(conn), conn.Close, nil
}

// setupChartCache connects to Redis when configured. A failed connection is
// logged and the service runs without a chart cache.
func setupChartCache(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	health *handlers.CompositeHealthChecker,
) (cohort.ChartCache, func()) {
	noop := func() {}
	if cfg.Redis.URL == "" || cfg.Redis.Disabled {
		return nil, noop
	}
	if !cfg.Cohort.Seeded() {
		log.Info("chart cache skipped: populations are not seeded")
		return nil, noop
	}

	cache, err := retry.Value(ctx, startupPolicy(log, "redis"), func(ctx context.Context) (*redis.Cache, error) {
		return redis.NewCacheFromURL(ctx, cfg.Redis.URL, redis.Options{
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
	})
	if err != nil {
		log.Warn("redis unavailable, continuing without chart cache", logger.Err(err))
		return nil, noop
	}

	charts := redis.NewChartCache(cache)

	// Drop projections cached by earlier builds.
	if n, err := charts.Invalidate(ctx); err != nil {
		log.Warn("failed to invalidate chart cache", logger.Err(err))
	} else if n > 0 {
		log.Info("invalidated cached charts", logger.Int("keys", n))
	}

	health.AddOptionalCheck("chart_cache", handlers.NewPingCheck(cache))
	log.Info("connected to Redis chart cache")

	return charts, func() { _ = cache.Close() }
}
