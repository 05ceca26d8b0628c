// Package config loads server and CLI settings from an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all limbo configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Auth      AuthConfig      `yaml:"auth"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Engine    EngineConfig    `yaml:"engine"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// AuthConfig configures operator login for the admin service.
type AuthConfig struct {
	JWTSecret            string `yaml:"jwt_secret"`
	Operator             string `yaml:"operator"`
	OperatorPasswordHash string `yaml:"operator_password_hash"` // bcrypt
	TokenTTL             string `yaml:"token_ttl"`
}

// SchedulerConfig configures the periodic jobs.
type SchedulerConfig struct {
	SweepInterval string `yaml:"sweep_interval"`
	StatsInterval string `yaml:"stats_interval"`
}

// EngineConfig configures the transaction engine.
type EngineConfig struct {
	DefaultExpiryWeeks int `yaml:"default_expiry_weeks"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./data/limbo.db"},
		Server:   ServerConfig{ListenAddr: ":8080"},
		Logging:  LoggingConfig{Level: "info"},
		Auth: AuthConfig{
			Operator: "admin",
			TokenTTL: "12h",
		},
		Scheduler: SchedulerConfig{
			SweepInterval: "1h",
			StatsInterval: "24h",
		},
		Engine: EngineConfig{DefaultExpiryWeeks: 52},
	}
}

// Load reads path (if it is not empty and exists) over the defaults and
// then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Defaults only.
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("LIMBO_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("LIMBO_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LIMBO_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("LIMBO_OPERATOR"); v != "" {
		c.Auth.Operator = v
	}
	if v := os.Getenv("LIMBO_OPERATOR_PASSWORD_HASH"); v != "" {
		c.Auth.OperatorPasswordHash = v
	}
	if v := os.Getenv("LIMBO_SWEEP_INTERVAL"); v != "" {
		c.Scheduler.SweepInterval = v
	}
	if v := os.Getenv("LIMBO_STATS_INTERVAL"); v != "" {
		c.Scheduler.StatsInterval = v
	}
	if v := os.Getenv("LIMBO_DEFAULT_EXPIRY_WEEKS"); v != "" {
		weeks, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LIMBO_DEFAULT_EXPIRY_WEEKS %q: %w", v, err)
		}
		c.Engine.DefaultExpiryWeeks = weeks
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetSweepInterval returns how often the expiry sweep runs.
func (c *Config) GetSweepInterval() time.Duration {
	return parseDuration(c.Scheduler.SweepInterval, time.Hour)
}

// GetStatsInterval returns how often a statistics snapshot is recorded.
func (c *Config) GetStatsInterval() time.Duration {
	return parseDuration(c.Scheduler.StatsInterval, 24*time.Hour)
}

// GetTokenTTL returns how long operator tokens stay valid.
func (c *Config) GetTokenTTL() time.Duration {
	return parseDuration(c.Auth.TokenTTL, 12*time.Hour)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path not configured (set LIMBO_DB_PATH)")
	}
	for name, value := range map[string]string{
		"sweep_interval": c.Scheduler.SweepInterval,
		"stats_interval": c.Scheduler.StatsInterval,
		"token_ttl":      c.Auth.TokenTTL,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.Engine.DefaultExpiryWeeks <= 0 {
		return fmt.Errorf("default_expiry_weeks must be positive, got %d", c.Engine.DefaultExpiryWeeks)
	}
	return nil
}

// AdminEnabled reports whether operator login is configured.
func (c *Config) AdminEnabled() bool {
	return c.Auth.JWTSecret != "" && c.Auth.OperatorPasswordHash != ""
}
