package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, SourceEmbedded, cfg.Data.Source)
	assert.Equal(t, 200, cfg.Selector.MaxAttempts)
	assert.Equal(t, "perfect", cfg.Selector.DefaultMode)
	assert.Equal(t, 5, cfg.Selection.MaxSize)
	assert.Equal(t, 3, cfg.Selection.DefaultTarget)
	assert.Equal(t, 50, cfg.Selection.HistoryLimit)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.DedupWindow)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_SELECTOR_DEFAULT_MODE", "mixed")
	t.Setenv("SELECTOR_SEED", "42")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("APP_SESSION_TTL", "30m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mixed", cfg.Selector.DefaultMode)
	assert.Equal(t, uint64(42), cfg.Selector.Seed)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"file source without path", map[string]string{"PAIRING_DATA_SOURCE": "file"}},
		{"unknown source", map[string]string{"PAIRING_DATA_SOURCE": "ftp"}},
		{"bad mode", map[string]string{"APP_SELECTOR_DEFAULT_MODE": "strict"}},
		{"target above max", map[string]string{"APP_SELECTION_DEFAULT_TARGET": "9"}},
		{"no attempts", map[string]string{"APP_SELECTOR_MAX_ATTEMPTS": "0"}},
		{"zero port", map[string]string{"APP_SERVER_PORT": "0"}},
		{"relative metrics path", map[string]string{"APP_METRICS_PATH": "metrics"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
