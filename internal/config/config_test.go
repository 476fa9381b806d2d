package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:       ":8080",
			LogLevel:       "info",
			SessionTimeout: "30m",
			LoginWindow:    "1m",
		},
		Store: StoreConfig{Driver: "memory"},
		Probe: ProbeConfig{Timeout: "5s"},
	}
}

func TestConfig_ValidateOK(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestConfig_ValidateRejectsBadLogLevel(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Server.LogLevel = "loud"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() accepted invalid log level")
	}
	if !strings.Contains(err.Error(), "one of") {
		t.Errorf("Validate() error = %q, want oneof message", err)
	}
}

func TestConfig_ValidateRejectsBadDriver(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Store.Driver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() accepted unsupported store driver")
	}
}

func TestConfig_SqliteRequiresPath(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() accepted sqlite driver without path")
	}
	if !strings.Contains(err.Error(), "store.path") {
		t.Errorf("Validate() error = %q, want store.path message", err)
	}

	cfg.Store.Path = "./assuredesk.db"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error with path set: %v", err)
	}
}

func TestConfig_ValidateRejectsBadDuration(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Server.SessionTimeout = "soon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() accepted unparseable session_timeout")
	}

	cfg = validConfig()
	cfg.Probe.Timeout = "-5s"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() accepted negative probe timeout")
	}
}

func TestDurationHelpers(t *testing.T) {
	t.Parallel()

	s := ServerConfig{SessionTimeout: "45m"}
	if got := s.SessionTimeoutOr(30 * time.Minute); got != 45*time.Minute {
		t.Errorf("SessionTimeoutOr() = %v, want 45m", got)
	}

	s = ServerConfig{}
	if got := s.SessionTimeoutOr(30 * time.Minute); got != 30*time.Minute {
		t.Errorf("SessionTimeoutOr() fallback = %v, want 30m", got)
	}

	p := ProbeConfig{Timeout: "garbage"}
	if got := p.TimeoutOr(5 * time.Second); got != 5*time.Second {
		t.Errorf("TimeoutOr() fallback = %v, want 5s", got)
	}
}

func TestSetDevDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{DevMode: true}
	cfg.SetDevDefaults()
	if cfg.Store.Driver != "memory" {
		t.Errorf("Store.Driver = %q, want memory", cfg.Store.Driver)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = false, want true in dev mode")
	}

	cfg = &Config{DevMode: false, Store: StoreConfig{Driver: "sqlite", Path: "x"}}
	cfg.SetDevDefaults()
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = true without dev mode")
	}
}
