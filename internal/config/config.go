package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	DebounceMS      int    `koanf:"debounce_ms"`       // search debounce in milliseconds (default: 300)
	MinSearchLength int    `koanf:"min_search_length"` // shortest term that filters (default: 2)
	Descriptors     string `koanf:"descriptors"`       // extra descriptor TOML file
	LogLevel        string `koanf:"log_level"`         // "debug", "info", "warn" or "error"

	// Saved filter snapshots
	Store StoreConfig `koanf:"store"`

	// Remote search backend
	Algolia AlgoliaConfig `koanf:"algolia"`
}

// StoreConfig selects where snapshots are saved.
type StoreConfig struct {
	Driver string `koanf:"driver"` // "sqlite" or "dynamodb" (default: "sqlite")
	Path   string `koanf:"path"`   // sqlite database file
	Table  string `koanf:"table"`  // dynamodb table name
}

// AlgoliaConfig holds the remote index settings.
type AlgoliaConfig struct {
	Index     string `koanf:"index"`
	SecretARN string `koanf:"secret_arn"` // AWS Secrets Manager secret with app id and key
}

const (
	DriverSQLite   = "sqlite"
	DriverDynamoDB = "dynamodb"
)

// Load reads the config files in order of priority.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given files, later files overriding earlier ones.
// Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "failed to load config %s", path)
			}
		}
	}

	cfg := &Config{
		DebounceMS:      int(panelsearch.DefaultDebounceDelay / time.Millisecond),
		MinSearchLength: panelsearch.DefaultMinSearchLength,
		LogLevel:        "info",
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   defaultStorePath(),
		},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	cfg.Descriptors = expandPath(cfg.Descriptors)
	cfg.Store.Path = expandPath(cfg.Store.Path)
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DebounceMS < 0 {
		return errors.Newf("debounce_ms cannot be negative, got %d", c.DebounceMS)
	}
	if c.MinSearchLength < 1 {
		return errors.Newf("min_search_length must be at least 1, got %d", c.MinSearchLength)
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverDynamoDB:
	default:
		return errors.Newf("store.driver %q not recognized, only support \"sqlite dynamodb\"", c.Store.Driver)
	}
	if c.Store.Driver == DriverDynamoDB && c.Store.Table == "" {
		return errors.New("store.table is required for the dynamodb driver")
	}
	return nil
}

// DebounceDelay returns the debounce as a duration.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// HasAlgolia returns true if the remote backend is configured.
func (c *Config) HasAlgolia() bool {
	return c.Algolia.Index != ""
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/panelsearch/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "panelsearch", "config.toml"))
	}

	// 2. ./panelsearch.toml (pwd, highest priority)
	paths = append(paths, "panelsearch.toml")

	return paths
}

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "panelsearch", "snapshots.db")
	}
	return "panelsearch.db"
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
