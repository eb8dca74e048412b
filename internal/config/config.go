// Package config loads desktop configuration from the environment with an
// optional TOML overlay file in the data directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all desktop configuration.
type Config struct {
	// DataDir overrides the platform user-data directory.
	DataDir string `envconfig:"DATA_DIR" toml:"data_dir"`

	Logging LogConfig    `toml:"logging"`
	Plugins PluginConfig `toml:"plugins"`
	Workers WorkerConfig `toml:"workers"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development"`

	// RingSize is the bounded length of each logger process's replay buffer.
	RingSize int `envconfig:"LOG_RING_SIZE" default:"1000" toml:"ring_size"`

	// RewriteEvery is the record count between on-disk rewrites of the
	// buffer. Lower values lose less tail on abnormal exit, at higher cost.
	RewriteEvery int `envconfig:"LOG_REWRITE_EVERY" default:"100" toml:"rewrite_every"`
}

// PluginConfig holds plugin discovery configuration.
type PluginConfig struct {
	// AppDirs are extra app plugin directories appended after the built-in
	// and user data directories.
	AppDirs []string `envconfig:"APP_DIRS" toml:"app_dirs"`

	// ShellDirs are extra shell plugin directories.
	ShellDirs []string `envconfig:"SHELL_DIRS" toml:"shell_dirs"`

	// Watch enables fsnotify-triggered rescans of plugin directories.
	Watch bool `envconfig:"PLUGIN_WATCH" default:"true" toml:"watch"`
}

// WorkerConfig holds worker watchdog configuration.
type WorkerConfig struct {
	// CheckInterval is how often the watchdog inspects tracked workers.
	CheckInterval time.Duration `envconfig:"WORKER_CHECK_INTERVAL" default:"3s" toml:"check_interval"`

	// Ceiling is the hard elapsed-time limit before a worker is cancelled.
	Ceiling time.Duration `envconfig:"WORKER_CEILING" default:"10s" toml:"ceiling"`
}

// Load reads configuration from TERMDESK_* environment variables, then
// overlays the TOML file at overlayPath when it exists. Environment values
// act as defaults; the file wins, matching how operators expect an explicit
// config file to behave.
func Load(overlayPath string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("termdesk", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if overlayPath != "" {
		data, err := os.ReadFile(overlayPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// No overlay file is normal.
		case err != nil:
			return nil, fmt.Errorf("failed to read config overlay %s: %w", overlayPath, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config overlay %s: %w", overlayPath, err)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration or returns defaults when loading fails.
func LoadOrDefault(overlayPath string) *Config {
	cfg, err := Load(overlayPath)
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Logging: LogConfig{Level: "info", RingSize: 1000, RewriteEvery: 100},
		Plugins: PluginConfig{Watch: true},
		Workers: WorkerConfig{CheckInterval: 3 * time.Second, Ceiling: 10 * time.Second},
	}
}

func (c *Config) validate() error {
	if c.Logging.RingSize <= 0 {
		return fmt.Errorf("logging ring_size must be positive, got %d", c.Logging.RingSize)
	}
	if c.Logging.RewriteEvery <= 0 {
		return fmt.Errorf("logging rewrite_every must be positive, got %d", c.Logging.RewriteEvery)
	}
	if c.Workers.CheckInterval <= 0 || c.Workers.Ceiling <= 0 {
		return fmt.Errorf("worker intervals must be positive")
	}
	return nil
}
