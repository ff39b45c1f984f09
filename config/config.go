// Package config loads the service configuration file.
//
// The file is TOML:
//
//	remote_api_base = "https://api.example.org"
//
//	[tasks]
//	keepers_refresh_interval = 3600 # seconds
//	keepers_fetch_timeout = 30      # seconds, optional
//
// Command-line flags override values from the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultRefreshInterval = time.Hour
	DefaultFetchTimeout    = 30 * time.Second

	// MaxSeconds is the largest number of seconds representable as a time.Duration.
	MaxSeconds = math.MaxInt64 / int64(time.Second)
)

// Config is the service configuration.
type Config struct {
	// RemoteAPIBase is the base URL of the upstream forum API.
	RemoteAPIBase string      `toml:"remote_api_base"`
	Tasks         TasksConfig `toml:"tasks"`
}

// TasksConfig configures background tasks. Durations are in whole seconds.
type TasksConfig struct {
	KeepersRefreshInterval int64 `toml:"keepers_refresh_interval"`
	KeepersFetchTimeout    int64 `toml:"keepers_fetch_timeout"`
}

// Default returns a configuration with defaults for everything but the
// upstream URL.
func Default() *Config {
	return &Config{
		Tasks: TasksConfig{
			KeepersRefreshInterval: int64(DefaultRefreshInterval / time.Second),
			KeepersFetchTimeout:    int64(DefaultFetchTimeout / time.Second),
		},
	}
}

// Load decodes a TOML configuration on top of the defaults. Unknown keys
// are rejected.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return nil, fmt.Errorf("unknown configuration keys:\n%s", strictErr.String())
		}
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile loads the configuration at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Validate checks that the configuration can run the service.
func (c *Config) Validate() error {
	if c.RemoteAPIBase == "" {
		return errors.New("remote_api_base is required")
	}
	if c.Tasks.KeepersRefreshInterval <= 0 {
		return fmt.Errorf("tasks.keepers_refresh_interval must be positive, got %d", c.Tasks.KeepersRefreshInterval)
	}
	if c.Tasks.KeepersRefreshInterval > MaxSeconds {
		return fmt.Errorf("tasks.keepers_refresh_interval must be at most %d, got %d", MaxSeconds, c.Tasks.KeepersRefreshInterval)
	}
	if c.Tasks.KeepersFetchTimeout < 0 {
		return fmt.Errorf("tasks.keepers_fetch_timeout must not be negative, got %d", c.Tasks.KeepersFetchTimeout)
	}
	if c.Tasks.KeepersFetchTimeout > MaxSeconds {
		return fmt.Errorf("tasks.keepers_fetch_timeout must be at most %d, got %d", MaxSeconds, c.Tasks.KeepersFetchTimeout)
	}
	return nil
}

// KeepersRefreshInterval returns the refresh interval as a duration.
func (c *Config) KeepersRefreshInterval() time.Duration {
	return time.Duration(c.Tasks.KeepersRefreshInterval) * time.Second
}

// KeepersFetchTimeout returns the fetch timeout as a duration. Zero falls
// back to DefaultFetchTimeout.
func (c *Config) KeepersFetchTimeout() time.Duration {
	if c.Tasks.KeepersFetchTimeout == 0 {
		return DefaultFetchTimeout
	}
	return time.Duration(c.Tasks.KeepersFetchTimeout) * time.Second
}
