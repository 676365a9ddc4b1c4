// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultDataFile    = "tasks.json"
	DefaultBackend     = "json"
	DefaultSortMode    = "original"
	DefaultLogLevel    = "info"
	defaultConfigName  = "taskdesk.toml"
	defaultConfigDir  = "taskdesk"
)

// Config holds the full configuration for taskdesk.
type Config struct {
	// Paths
	DataFile string `toml:"data_file"`

	// Backend selects the persistence store: "json" or "sqlite".
	Backend string `toml:"backend"`

	// DefaultSort is the list view used when --sort is not given.
	DefaultSort string `toml:"default_sort"`

	// Logging
	LogLevel string `toml:"log_level"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		DataFile:    DefaultDataFile,
		Backend:     DefaultBackend,
		DefaultSort: DefaultSortMode,
		LogLevel:    DefaultLogLevel,
	}
}

// Load resolves configuration in increasing precedence: defaults, the
// config file, then TASKDESK_* environment variables. CLI flags are
// applied on top by the caller. When path is empty the default location
// is used and a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns the user config file location
// (~/.config/taskdesk/taskdesk.toml), or "" when it cannot be resolved.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, defaultConfigDir, defaultConfigName)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TASKDESK_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("TASKDESK_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("TASKDESK_DEFAULT_SORT"); v != "" {
		cfg.DefaultSort = v
	}
	if v := os.Getenv("TASKDESK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid backend %q, must be json or sqlite", c.Backend)
	}
	switch c.DefaultSort {
	case "original", "priority", "due_date":
	default:
		return fmt.Errorf("invalid default_sort %q, must be original, priority, or due_date", c.DefaultSort)
	}
	return nil
}
