package configuration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig represents the complete application configuration.
type AppConfig struct {
	// Logger — logger component configuration
	Logger LoggerConfig `mapstructure:"logger"`
	// Server — HTTP server configuration
	Server ServerConfig `mapstructure:"server"`
	// Analysis — risk scoring configuration
	Analysis AnalysisConfig `mapstructure:"analysis"`
	// History — per-agent score history configuration
	History HistoryConfig `mapstructure:"history"`
	// Archive — computed profile archive configuration
	Archive ArchiveConfig `mapstructure:"archive"`
}

// LoggerConfig defines logging settings.
type LoggerConfig struct {
	// Level — log level: debug, info, warn, warning, error.
	// Value is case-insensitive.
	Level string `mapstructure:"level"`
}

// ServerConfig contains HTTP server parameters.
type ServerConfig struct {
	// Address — address and port where the server will listen (e.g., ":8080").
	Address string `mapstructure:"address"`
	// ShutdownTimeout — how long in-flight requests may run after a stop signal.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxBodyBytes — upper bound on request bodies.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// AnalysisConfig defines risk scoring parameters.
type AnalysisConfig struct {
	// Rules — optional path to a YAML rule file replacing the built-in rules.
	Rules string `mapstructure:"rules"`
	// TakeRate — brokerage share of agent GCI, between 0 and 1.
	TakeRate float64 `mapstructure:"take_rate"`
	// MatchByID — associate records by exact agent id when both sides carry one.
	MatchByID bool `mapstructure:"match_by_id"`
	// IncludeStatuses — roster statuses that are scored. Empty scores everyone.
	IncludeStatuses []string `mapstructure:"include_statuses"`
	// TopAlerts — length of the alert list; 0 lists every alert.
	TopAlerts int `mapstructure:"top_alerts"`
}

// HistoryConfig defines the in-memory score history.
type HistoryConfig struct {
	// Length — snapshots kept per agent.
	Length int `mapstructure:"length"`
	// TTL — agents not refreshed for this long are forgotten. Example: "720h".
	TTL time.Duration `mapstructure:"ttl"`
	// Interval — how often stale agents are evicted.
	Interval time.Duration `mapstructure:"interval"`
}

// ArchiveConfig defines the profile archive.
type ArchiveConfig struct {
	// File — archive file path; empty disables archiving.
	File string `mapstructure:"file"`
	// Size — maximal archive file size in MB before rotation.
	Size int `mapstructure:"size"`
	// Amount — number of rotated files kept.
	Amount int `mapstructure:"amount"`
}

// Validate checks the correctness of the entire application configuration
// and returns the first detected error.
func (c *AppConfig) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return err
	}

	if err := c.Server.Validate(); err != nil {
		return err
	}

	if err := c.Analysis.Validate(); err != nil {
		return err
	}

	if err := c.History.Validate(); err != nil {
		return err
	}

	return c.Archive.Validate()
}

// Validate checks that the log level is one of the supported values.
func (l *LoggerConfig) Validate() error {
	if l.Level == "" {
		return errors.New("logger.level: must be specified")
	}

	valid := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !valid[strings.ToLower(l.Level)] {
		return fmt.Errorf("logger.level: unsupported level '%s'", l.Level)
	}

	return nil
}

// Validate checks the server parameters.
func (s *ServerConfig) Validate() error {
	if s.Address == "" {
		return errors.New("server.address: must be specified")
	}
	if s.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout: must be positive")
	}
	if s.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes: must be positive")
	}

	return nil
}

// Validate checks the scoring parameters.
func (a *AnalysisConfig) Validate() error {
	if a.TakeRate < 0 || a.TakeRate > 1 {
		return fmt.Errorf("analysis.take_rate: %v is outside [0, 1]", a.TakeRate)
	}
	if a.TopAlerts < 0 {
		return errors.New("analysis.top_alerts: must not be negative")
	}

	return nil
}

// Validate checks the history parameters.
func (h *HistoryConfig) Validate() error {
	if h.Length <= 0 {
		return errors.New("history.length: must be positive")
	}
	if h.TTL < 0 {
		return errors.New("history.ttl: must not be negative")
	}
	if h.Interval <= 0 {
		return errors.New("history.interval: must be positive")
	}

	return nil
}

// Validate checks the archive parameters when archiving is enabled.
func (a *ArchiveConfig) Validate() error {
	if a.File == "" {
		return nil
	}
	if a.Size <= 0 {
		return errors.New("archive.size: must be positive")
	}
	if a.Amount < 0 {
		return errors.New("archive.amount: must not be negative")
	}

	return nil
}

// setDefaults registers the value of every optional key. Keys without a
// registered default are invisible to environment overrides, so empty
// defaults are set explicitly.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 32<<20)
	v.SetDefault("analysis.rules", "")
	v.SetDefault("analysis.take_rate", 0.15)
	v.SetDefault("analysis.match_by_id", false)
	v.SetDefault("analysis.include_statuses", []string{"active"})
	v.SetDefault("analysis.top_alerts", 10)
	v.SetDefault("history.length", 30)
	v.SetDefault("history.ttl", 30*24*time.Hour)
	v.SetDefault("history.interval", time.Minute)
	v.SetDefault("archive.file", "")
	v.SetDefault("archive.size", 100)
	v.SetDefault("archive.amount", 20)
}

// LoadConfig loads configuration from the specified YAML file using Viper.
// Environment variables override file values; nested keys use underscores
// (SERVER_ADDRESS overrides server.address). An empty configPath loads
// defaults and environment only.
//
// Returns an error if:
// - the file is not found or inaccessible
// - the configuration has invalid format
// - one of the sections fails validation
func LoadConfig(configPath string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
