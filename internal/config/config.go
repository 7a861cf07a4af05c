// Package config loads the audit layer's settings from a YAML file with
// .env / environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"etf-turtle/internal/storage/postgres"
)

// Config is the full settings document.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig holds the connection descriptor and pool bounds.
type DatabaseConfig struct {
	DSN                   string `yaml:"dsn"`
	MinConns              int32  `yaml:"min_conns"`
	MaxConns              int32  `yaml:"max_conns"`
	CommandTimeoutSeconds int    `yaml:"command_timeout_seconds"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

// Load reads the YAML file at path (skipped when path is empty), applies a
// .env file if present, then environment overrides, then defaults.
func Load(path string) (*Config, error) {
	// Silently absent .env is fine
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg, nil
}

// Pool converts the database section into a pool config.
func (c *Config) Pool() postgres.Config {
	return postgres.Config{
		DSN:            c.Database.DSN,
		MinConns:       c.Database.MinConns,
		MaxConns:       c.Database.MaxConns,
		CommandTimeout: time.Duration(c.Database.CommandTimeoutSeconds) * time.Second,
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			cfg.Database.MaxConns = int32(n)
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 1
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 5
	}
	if cfg.Database.CommandTimeoutSeconds == 0 {
		cfg.Database.CommandTimeoutSeconds = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}
