// Package config provides application configuration management with support for
// a YAML file, environment variables, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable the server reads.
// Nested keys are separated by a double underscore: ROLODEX_SERVER__PORT.
const EnvPrefix = "ROLODEX_"

// DefaultConfigFile is loaded from the working directory when no file is given.
const DefaultConfigFile = "rolodex.yaml"

// Environments.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig        `koanf:"app"`
	Logger     LoggerConfig     `koanf:"logger"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Pagination PaginationConfig `koanf:"pagination"`
	RateLimit  RateLimitConfig  `koanf:"ratelimit"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `koanf:"environment"`
}

// ShowsErrorDetails reports whether 500 responses describe the failure.
func (a AppConfig) ShowsErrorDetails() bool {
	return ShowsErrorDetails(a.Environment)
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `koanf:"level"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        `koanf:"port"`          // Server port (default: 8080)
	ReadTimeout  time.Duration `koanf:"read_timeout"`  // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration `koanf:"write_timeout"` // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration `koanf:"idle_timeout"`  // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      `koanf:"cors_origins"`
}

// DatabaseConfig selects and locates the relational store.
type DatabaseConfig struct {
	Driver string `koanf:"driver"` // sqlite or postgres
	DSN    string `koanf:"dsn"`    // PostgreSQL connection string
	Path   string `koanf:"path"`   // SQLite database file
}

// PaginationConfig bounds list endpoints.
type PaginationConfig struct {
	// MaxPerPage caps per_page when positive. Zero leaves it unbounded.
	MaxPerPage int `koanf:"max_per_page"`
}

// RateLimitConfig holds per-client rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// defaults are the lowest-priority configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"app.environment":         EnvDevelopment,
		"logger.level":            "info",
		"server.port":             "8080",
		"server.read_timeout":     "15s",
		"server.write_timeout":    "15s",
		"server.idle_timeout":     "60s",
		"server.cors_origins":     []string{"*"},
		"database.driver":         DriverSQLite,
		"database.dsn":            "",
		"database.path":           "rolodex.db",
		"pagination.max_per_page": 0,
		"ratelimit.enabled":       true,
		"ratelimit.rps":           20.0,
		"ratelimit.burst":         40,
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"env":          "app.environment",
	"log-level":    "logger.level",
	"port":         "server.port",
	"db-driver":    "database.driver",
	"db-dsn":       "database.dsn",
	"db-path":      "database.path",
	"max-per-page": "pagination.max_per_page",
	"rate-limit":   "ratelimit.enabled",
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to YAML config file (default: ./"+DefaultConfigFile+" if present)")
	fs.String("env", "", "Environment (development, test, staging, production)")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.String("port", "", "Server port (default: 8080)")
	fs.String("db-driver", "", "Database driver (sqlite, postgres)")
	fs.String("db-dsn", "", "PostgreSQL connection string")
	fs.String("db-path", "", "SQLite database file")
	fs.Int("max-per-page", 0, "Upper bound for per_page (0 = unbounded)")
	fs.Bool("rate-limit", true, "Enable per-client rate limiting")
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables (ROLODEX_ prefix).
// 3. YAML config file.
// 4. Default values (lowest priority).
//
// flags may be nil. A non-empty path must exist; an empty path falls back to
// DefaultConfigFile when it exists.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" && flags != nil {
		path, _ = flags.GetString("config")
	}
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()

	if cfg.Database.Driver == DriverSQLite {
		expanded, err := expandPath(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("invalid database path: %w", err)
		}
		cfg.Database.Path = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envKeyValue maps ROLODEX_SERVER__CORS_ORIGINS=a,b to
// server.cors_origins=[a b].
func envKeyValue(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "server.cors_origins" {
		return key, splitList(value)
	}
	return key, value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) normalize() {
	c.App.Environment = strings.TrimSpace(c.App.Environment)
	c.Logger.Level = strings.ToLower(strings.TrimSpace(c.Logger.Level))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "sqlite3" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == "postgresql" {
		c.Database.Driver = DriverPostgres
	}
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("app.environment is required")
	}

	validEnvs := map[string]bool{
		EnvDevelopment: true,
		EnvTest:        true,
		EnvStaging:     true,
		EnvProduction:  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, test, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("invalid database driver: %s (must be sqlite or postgres)", c.Database.Driver)
	}

	if c.Pagination.MaxPerPage < 0 {
		return fmt.Errorf("invalid pagination.max_per_page: %d", c.Pagination.MaxPerPage)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("ratelimit.rps and ratelimit.burst must be positive when rate limiting is enabled")
	}

	return nil
}

// ShowsErrorDetails reports whether env exposes the class, message and
// backtrace of unclassified errors to clients. Only development does.
func ShowsErrorDetails(env string) bool {
	return env == EnvDevelopment
}

// expandPath expands ~ and makes the path absolute. SQLite URIs and
// in-memory databases are returned unchanged.
func expandPath(path string) (string, error) {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}
