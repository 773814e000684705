// Package config provides configuration management for the value tracker.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "VALUE_TRACKER"

// Load reads and parses the configuration from file and environment
// variables. ${VAR} placeholders in the YAML file are expanded before
// parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// LoadWithDefaults loads configuration, falling back to defaults and
// environment variables when the file is absent.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "value-tracker")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("ledger.backend", "file")
	v.SetDefault("ledger.path", "data/bet_history.csv")
	v.SetDefault("tracking.days_ahead", 3)
	v.SetDefault("tracking.stake_per_bet", 100.0)
	v.SetDefault("tracking.min_value", 0.01)
	v.SetDefault("tracking.day_cap", 1)
	v.SetDefault("feeds.tournament", "USA - NHL")
	v.SetDefault("feeds.timeout_seconds", 30)
	v.SetDefault("feeds.max_retries", 5)
	v.SetDefault("feeds.rate_limit", 5.0)
	v.SetDefault("feeds.cache_ttl_minutes", 10)
	v.SetDefault("server.api_address", ":8090")
	v.SetDefault("server.health_port", "8080")
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("schedule.cron_expr", "0 6 * * *")
}
