package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Store backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

const envPrefix = "RENTDESK_"

type Config struct {
	Store     StoreConfig     `koanf:"store"`
	Reminders RemindersConfig `koanf:"reminders"`
	UI        UIConfig        `koanf:"ui"`
	Log       LogConfig       `koanf:"log"`
	Watch     WatchConfig     `koanf:"watch"`
}

type StoreConfig struct {
	Backend string `koanf:"backend"` // csv or sqlite
	Path    string `koanf:"path"`
}

type RemindersConfig struct {
	DueSoonHours int `koanf:"due_soon_hours"`
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"` // Empty disables logging
}

type WatchConfig struct {
	Interval int `koanf:"interval"` // Seconds between digests
}

// Load layers defaults, the YAML file at configPath (if it exists) and
// RENTDESK_* environment variables, in that order.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// RENTDESK_STORE_PATH -> store.path, RENTDESK_REMINDERS_DUE_SOON_HOURS -> reminders.due_soon_hours
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store.Path = expandPath(cfg.Store.Path)
	cfg.Log.File = expandPath(cfg.Log.File)

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend: %s (supported: %s, %s)",
			c.Store.Backend, BackendCSV, BackendSQLite)
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}

	if c.Reminders.DueSoonHours <= 0 {
		return fmt.Errorf("due_soon_hours must be positive")
	}

	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}

	return nil
}

// DueSoonWindow returns the configured default due-soon window.
func (c *Config) DueSoonWindow() time.Duration {
	return time.Duration(c.Reminders.DueSoonHours) * time.Hour
}

// WatchInterval returns the time between watch digests.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.Interval) * time.Second
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
