package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.EqualValues(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.Stream.HeartbeatInterval)
	assert.Equal(t, 64, cfg.Stream.BufferSize)
	assert.Equal(t, 60, cfg.RateLimiter.RequestsPerTimeFrame)
	assert.Equal(t, time.Minute, cfg.RateLimiter.TimeFrame)
	assert.Equal(t, "zap", cfg.Logger.Logger)
	assert.False(t, cfg.Tracing.Enabled)
	assert.False(t, cfg.AMQP.Enabled)
	assert.Equal(t, "relay", cfg.AMQP.Exchange)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 9090
stream:
  heartbeat_interval: 5s
  buffer_size: 16
logger:
  logger: zerolog
amqp:
  enabled: true
`), 0o600))

	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("STREAM_BUFFER_SIZE", "32")
	t.Setenv("AMQP_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.EqualValues(t, 7070, cfg.HTTP.Port, "env wins over the file")
	assert.Equal(t, 32, cfg.Stream.BufferSize)
	assert.Equal(t, 5*time.Second, cfg.Stream.HeartbeatInterval, "file wins over defaults")
	assert.Equal(t, "zerolog", cfg.Logger.Logger)
	assert.False(t, cfg.AMQP.Enabled)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
}

func TestLoad_RejectsNonPositiveDurations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "zero rate limit window", yaml: "rateLimiter:\n  timeFrame: 0s\n"},
		{name: "negative rate limit window", yaml: "rateLimiter:\n  timeFrame: -1s\n"},
		{name: "zero heartbeat", yaml: "stream:\n  heartbeat_interval: 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDetermineConfigPath(t *testing.T) {
	t.Setenv("RELAY_CONFIG", "/from/env.yaml")

	assert.Equal(t, "/from/flag.yaml", DetermineConfigPath([]string{"--config", "/from/flag.yaml"}))
	assert.Equal(t, "/from/flag.yaml", DetermineConfigPath([]string{"-c", "/from/flag.yaml"}))
	assert.Equal(t, "/from/env.yaml", DetermineConfigPath(nil))
}
