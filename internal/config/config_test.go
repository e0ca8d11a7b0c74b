package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 256, cfg.Realtime.SendBufferSize)
	assert.Equal(t, 60*time.Second, cfg.Realtime.PongWait())
}

func TestLoadOverridesAndBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  address: ":9090"
  allowed_origins:
    - "https://educonnect.test"
realtime:
  send_buffer_size: 64
  event_rate: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, []string{"https://educonnect.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 64, cfg.Realtime.SendBufferSize)
	assert.Equal(t, float64(5), cfg.Realtime.EventRate)

	// unset fields keep their defaults
	assert.Equal(t, 10*time.Second, cfg.Realtime.WriteWait())
	assert.Equal(t, 30*time.Second, cfg.Realtime.PingInterval())
	assert.Equal(t, float64(20), cfg.Server.RequestRate)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: a map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
