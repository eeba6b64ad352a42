// Package config loads qdsl settings from a YAML file and QDSL_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/qdsl/internal/store"
)

// EnvPrefix prefixes every environment variable config reads.
const EnvPrefix = "QDSL_"

// DBConfig selects and tunes the database.
type DBConfig struct {
	// Driver is sqlite3, sqlite or postgres.
	Driver string `env:"DRIVER" yaml:"driver"`

	// DSN is a file path for SQLite or a connection string for Postgres.
	DSN string `env:"DSN" yaml:"dsn"`

	// StatementCache is the prepared statement cache size; 0 disables it.
	StatementCache int `env:"STATEMENT_CACHE" yaml:"statement_cache"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `env:"LEVEL" yaml:"level"`

	// Format is text or json.
	Format string `env:"FORMAT" yaml:"format"`
}

// Config is the complete qdsl configuration.
type Config struct {
	DB  DBConfig  `envPrefix:"DB_" yaml:"db"`
	Log LogConfig `envPrefix:"LOG_" yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DB: DBConfig{
			Driver:         store.DriverSQLite3,
			DSN:            "qdsl.db",
			StatementCache: store.DefaultStatementCacheSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the defaults overlaid by the file at path (skipped when
// path is empty) and then by the environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseFile decodes a YAML file over cfg. Unknown keys are rejected.
func parseFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// parseEnv overrides cfg with QDSL_* variables that are set.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}
	return nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case store.DriverSQLite3, store.DriverSQLite, store.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("db.driver: unknown driver %q", c.DB.Driver))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db.dsn: must not be empty"))
	}
	if c.DB.StatementCache < 0 {
		errs = append(errs, fmt.Errorf("db.statement_cache: must not be negative, got %d", c.DB.StatementCache))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: want text or json, got %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// StoreOptions returns the store.Open options this config implies.
func (c *Config) StoreOptions(logger *slog.Logger) []store.Option {
	return []store.Option{
		store.WithLogger(logger),
		store.WithStatementCacheSize(c.DB.StatementCache),
	}
}
