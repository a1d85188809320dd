package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prediction-engine/models"
)

// TestLoadMissingFile verifies a missing config file yields the
// defaults, not an error.
func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8090", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Predictors.EmissionThreshold)
	assert.Equal(t, 7*24*time.Hour, cfg.Retention.MaxAge.D())
}

// TestLoadOverrides verifies file values replace defaults and omitted
// sections keep them.
func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	content := []byte(`
server:
  addr: ":9000"
retention:
  max_age: "48h"
  reap_interval: "1m"
predictors:
  emission_threshold: 40
  failure:
    quality_floor: 50
    low_quality_count: 2
    low_quality_weight: 45
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 48*time.Hour, cfg.Retention.MaxAge.D())
	assert.Equal(t, time.Minute, cfg.Retention.ReapInterval.D())
	assert.Equal(t, 40, cfg.Predictors.EmissionThreshold)
	assert.Equal(t, 50.0, cfg.Predictors.Failure.QualityFloor)
	assert.Equal(t, 45, cfg.Predictors.Failure.LowQualityWeight)

	// Untouched sections keep defaults.
	assert.Equal(t, "predictions.db", cfg.Database.Path)
	assert.Equal(t, 40, cfg.Predictors.Bottleneck.PendingWeight)
}

// TestLoadBadDuration verifies malformed durations are load errors.
func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retention:\n  max_age: \"soon\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

// TestWindowDuration covers the fixed window table and the unknown
// window case.
func TestWindowDuration(t *testing.T) {
	tests := []struct {
		window models.ForecastWindow
		want   time.Duration
	}{
		{models.Window5m, 5 * time.Minute},
		{models.Window30m, 30 * time.Minute},
		{models.Window6h, 6 * time.Hour},
		{models.Window24h, 24 * time.Hour},
		{models.Window7d, 7 * 24 * time.Hour},
	}
	for _, tc := range tests {
		dur, ok := WindowDuration(tc.window)
		require.True(t, ok, tc.window)
		assert.Equal(t, tc.want, dur)
	}

	_, ok := WindowDuration("90m")
	assert.False(t, ok)
}
