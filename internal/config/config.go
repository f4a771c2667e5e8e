// Package config loads the service configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// DefaultFileName is looked up in the working directory when no path is
// given.
const DefaultFileName = "starplate.yaml"

// Config holds the service configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	Backend         string `yaml:"backend"`
	DataDir         string `yaml:"data_dir"`
	RestaurantsFile string `yaml:"restaurants_file"`
	StarredFile     string `yaml:"starred_file"`
	AtomicWrites    bool   `yaml:"atomic_writes"`
	SQLitePath      string `yaml:"sqlite_path"`
	PostgresDSN     string `yaml:"postgres_dsn"`

	Metrics   *bool   `yaml:"metrics,omitempty"`
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst *int    `yaml:"rate_burst,omitempty"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":3001"
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendJSON
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.RestaurantsFile == "" {
		cfg.RestaurantsFile = "restaurants.json"
	}
	if cfg.StarredFile == "" {
		cfg.StarredFile = "starredRestaurants.json"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "starplate.db"
	}
	if cfg.Metrics == nil {
		enabled := true
		cfg.Metrics = &enabled
	}
	if cfg.RateBurst == nil {
		burst := 20
		cfg.RateBurst = &burst
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
}

// Load reads the configuration from path. An empty path tries
// DefaultFileName in the working directory and falls back to defaults when it
// does not exist; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	cfg, err := loadFromFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendJSON, BackendSQLite, BackendMemory:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres backend requires postgres_dsn")
		}
	default:
		return fmt.Errorf("unknown backend %q (want json, sqlite, postgres or memory)", c.Backend)
	}
	if c.RateLimit < 0 {
		return errors.New("rate_limit must not be negative")
	}
	if c.RateBurst != nil && *c.RateBurst < 0 {
		return errors.New("rate_burst must not be negative")
	}
	return nil
}

// MetricsEnabled reports whether /metrics is served.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics == nil || *c.Metrics
}

// Burst returns the per-IP burst size. An explicit 0 is kept; the limiter
// still admits one request at a time.
func (c *Config) Burst() int {
	if c.RateBurst == nil {
		return 20
	}
	return *c.RateBurst
}

// RestaurantsPath is the restaurants collection file for the json backend.
func (c *Config) RestaurantsPath() string {
	return c.resolve(c.RestaurantsFile)
}

// StarredPath is the starred collection file for the json backend.
func (c *Config) StarredPath() string {
	return c.resolve(c.StarredFile)
}

// SQLiteFile is the database file for the sqlite backend.
func (c *Config) SQLiteFile() string {
	return c.resolve(c.SQLitePath)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "."+string(filepath.Separator)) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
