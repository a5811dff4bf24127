package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, uint16(8080), cfg.HTTP.Port)
	assert.Equal(t, time.Duration(0), cfg.HTTP.WriteTimeout, "streaming requires no write timeout")

	assert.Equal(t, "zap", cfg.Logger.Backend)
	assert.Equal(t, "info", cfg.Logger.Level)

	assert.Equal(t, 10*time.Second, cfg.Rooms.CompletedTTL)
	assert.Equal(t, 5*time.Minute, cfg.Rooms.ActiveTTL)
	assert.Equal(t, time.Second, cfg.Rooms.ReapInterval)
	assert.Equal(t, uint(10000), cfg.Rooms.Capacity)
	assert.Equal(t, 20, cfg.Rooms.MaxMembers)

	assert.Equal(t, 64, cfg.Stream.QueueSize)
	assert.False(t, cfg.RateLimiter.Enabled)
	assert.Empty(t, cfg.Tracing.Endpoint)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 9090
rooms:
  completed_ttl: 30s
  active_ttl: 0s
rateLimiter:
  enabled: true
  maxRatePerSecond: 5
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(9090), cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.Rooms.CompletedTTL)
	assert.Equal(t, time.Duration(0), cfg.Rooms.ActiveTTL)
	assert.True(t, cfg.RateLimiter.Enabled)
	assert.Equal(t, 5, cfg.RateLimiter.MaxRatePerSecond)

	// Untouched keys keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 64, cfg.Stream.QueueSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("LOGGER_BACKEND", "zerolog")
	t.Setenv("ROOM_COMPLETED_TTL_SECONDS", "42")
	t.Setenv("ROOM_ACTIVE_TTL_SECONDS", "0")
	t.Setenv("RATE_LIMIT_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, uint16(9999), cfg.HTTP.Port)
	assert.Equal(t, "zerolog", cfg.Logger.Backend)
	assert.Equal(t, 42*time.Second, cfg.Rooms.CompletedTTL)
	assert.Equal(t, time.Duration(0), cfg.Rooms.ActiveTTL, "0 disables the active-room policy")
	assert.True(t, cfg.RateLimiter.Enabled)
}
