// Package config provides configuration types and loading for AssureDesk.
package config

import (
	"time"
)

// Config is the top-level configuration for the AssureDesk console server.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Store configures where users, connections, and applications are kept.
	Store StoreConfig `yaml:"store" mapstructure:"store"`

	// Seed configures optional demo-data fixtures loaded at startup.
	Seed SeedConfig `yaml:"seed" mapstructure:"seed"`

	// Probe configures connection test probes.
	Probe ProbeConfig `yaml:"probe" mapstructure:"probe"`

	// Telemetry configures the optional OpenTelemetry stdout pipeline.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`

	// DevMode enables development features (debug logging, telemetry).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// HTTPAddr is the listen address, e.g. ":8080" or "127.0.0.1:8080".
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"required"`

	// LogLevel is one of debug, info, warn, error. Default: info.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// SessionTimeout is the sliding session expiry, e.g. "30m".
	SessionTimeout string `yaml:"session_timeout" mapstructure:"session_timeout" validate:"omitempty"`

	// LoginMaxAttempts is the per-IP login attempt budget per window.
	// Zero disables login rate limiting.
	LoginMaxAttempts int `yaml:"login_max_attempts" mapstructure:"login_max_attempts" validate:"omitempty,min=0"`

	// LoginWindow is the login rate limit window, e.g. "1m".
	LoginWindow string `yaml:"login_window" mapstructure:"login_window" validate:"omitempty"`
}

// StoreConfig configures the backing store.
type StoreConfig struct {
	// Driver selects the store implementation: "memory" or "sqlite".
	Driver string `yaml:"driver" mapstructure:"driver" validate:"required,oneof=memory sqlite"`

	// Path is the SQLite database file. Required when driver is "sqlite".
	Path string `yaml:"path" mapstructure:"path"`
}

// SeedConfig configures demo-data fixtures.
type SeedConfig struct {
	// File is a YAML fixture file loaded into the store at startup.
	// Empty means no seeding.
	File string `yaml:"file" mapstructure:"file"`
}

// ProbeConfig configures connection test probes.
type ProbeConfig struct {
	// Timeout bounds a single connection probe, e.g. "5s".
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty"`
}

// TelemetryConfig configures the OpenTelemetry stdout pipeline.
type TelemetryConfig struct {
	// Enabled turns on trace and metric export to stdout. Default: false.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// SessionTimeout returns the parsed session timeout, or def when unset
// or unparseable.
func (c *ServerConfig) SessionTimeoutOr(def time.Duration) time.Duration {
	return parseDurationOr(c.SessionTimeout, def)
}

// LoginWindowOr returns the parsed login rate limit window, or def.
func (c *ServerConfig) LoginWindowOr(def time.Duration) time.Duration {
	return parseDurationOr(c.LoginWindow, def)
}

// TimeoutOr returns the parsed probe timeout, or def.
func (c *ProbeConfig) TimeoutOr(def time.Duration) time.Duration {
	return parseDurationOr(c.Timeout, def)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// SetDevDefaults applies development-mode conveniences: the memory store
// and telemetry are enabled when nothing else was configured.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	c.Telemetry.Enabled = true
}
