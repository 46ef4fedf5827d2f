package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, time.UTC, cfg.App.Location)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Address())
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 100, cfg.Cohort.Size)
	assert.False(t, cfg.Cohort.Seeded())
	assert.True(t, cfg.Cohort.IncludeSubmissions)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("COHORT_SIZE", "250")
	t.Setenv("COHORT_SEED", "42")
	t.Setenv("COHORT_INCLUDE_SUBMISSIONS", "false")
	t.Setenv("CHART_CACHE_TTL", "90s")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, 250, cfg.Cohort.Size)
	assert.Equal(t, uint64(42), cfg.Cohort.Seed)
	assert.True(t, cfg.Cohort.Seeded())
	assert.False(t, cfg.Cohort.IncludeSubmissions)
	assert.Equal(t, 90*time.Second, cfg.Cohort.ChartCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("COHORT_SIZE: 30\nLOG_LEVEL: debug\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Cohort.Size)
	assert.Equal(t, "warn", cfg.Observability.LogLevel, "environment wins over file")
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"APP_ENV":      "qa",
		"HTTP_PORT":    "0",
		"COHORT_SIZE":  "20000",
		"LOG_FORMAT":   "xml",
		"APP_TIMEZONE": "Mars/Olympus",
	}

	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
