package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches for assuredesk.yaml/.yml in
// standard locations. The search requires an explicit YAML extension to
// avoid matching the binary itself.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file found in any standard location. Set name/type
		// without search paths so ReadInConfig returns
		// ConfigFileNotFoundError (handled gracefully by callers).
		viper.SetConfigName("assuredesk")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: ASSUREDESK_SERVER_HTTP_ADDR
	viper.SetEnvPrefix("ASSUREDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for an assuredesk config file
// with an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".assuredesk"),
		"/etc/assuredesk",
	}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "assuredesk"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds all config keys for environment variable support.
// Example: ASSUREDESK_SERVER_HTTP_ADDR overrides server.http_addr
func bindNestedEnvKeys() {
	_ = viper.BindEnv("server.http_addr")
	_ = viper.BindEnv("server.log_level")
	_ = viper.BindEnv("server.session_timeout")
	_ = viper.BindEnv("server.login_max_attempts")
	_ = viper.BindEnv("server.login_window")

	_ = viper.BindEnv("store.driver")
	_ = viper.BindEnv("store.path")

	_ = viper.BindEnv("seed.file")

	_ = viper.BindEnv("probe.timeout")

	_ = viper.BindEnv("telemetry.enabled")

	_ = viper.BindEnv("dev_mode")
}

// setDefaults registers default values for optional keys.
func setDefaults() {
	viper.SetDefault("server.http_addr", ":8080")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.session_timeout", "30m")
	viper.SetDefault("server.login_max_attempts", 10)
	viper.SetDefault("server.login_window", "1m")
	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("probe.timeout", "5s")
}

// LoadConfig reads the configuration file, applies environment overrides
// and defaults, and returns the Config. Callers should apply CLI flag
// overrides, then call cfg.SetDevDefaults() and cfg.Validate().
func LoadConfig() (*Config, error) {
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars and defaults only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ConfigFileUsed returns the path of the config file Viper loaded, if any.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
