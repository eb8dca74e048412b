package config

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
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 1000, cfg.Logging.RingSize)
	assert.Equal(t, 100, cfg.Logging.RewriteEvery)
	assert.True(t, cfg.Plugins.Watch)
	assert.Equal(t, 3*time.Second, cfg.Workers.CheckInterval)
	assert.Equal(t, 10*time.Second, cfg.Workers.Ceiling)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TERMDESK_LOG_LEVEL", "debug")
	t.Setenv("TERMDESK_WORKER_CEILING", "30s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.Workers.Ceiling)
}

func TestLoadOverlayWinsOverEnv(t *testing.T) {
	t.Setenv("TERMDESK_LOG_LEVEL", "debug")

	overlay := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(overlay, []byte(`
[logging]
level = "warn"
ring_size = 50
`), 0o644))

	cfg, err := Load(overlay)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 50, cfg.Logging.RingSize)
	// Untouched fields keep their env/default values.
	assert.Equal(t, 100, cfg.Logging.RewriteEvery)
}

func TestLoadMissingOverlayIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.NoError(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	overlay := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(overlay, []byte(`
[logging]
ring_size = 0
`), 0o644))

	_, err := Load(overlay)
	assert.Error(t, err)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	overlay := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(overlay, []byte("not toml at all ["), 0o644))

	cfg := LoadOrDefault(overlay)
	assert.Equal(t, 1000, cfg.Logging.RingSize)
}
