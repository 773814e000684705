// Package config provides configuration management for the value tracker.
package config

import "fmt"

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Ledger   LedgerConfig   `mapstructure:"ledger" validate:"required"`
	Tracking TrackingConfig `mapstructure:"tracking" validate:"required"`
	Feeds    FeedsConfig    `mapstructure:"feeds" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// LedgerConfig selects and configures the ledger store backend.
type LedgerConfig struct {
	Backend  string         `mapstructure:"backend" validate:"required,oneof=file postgres"`
	Path     string         `mapstructure:"path"`
	Database DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig represents the Postgres backend connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConns int    `mapstructure:"max_conns" validate:"omitempty,gt=0"`
}

// TrackingConfig holds the selection and staking policy.
type TrackingConfig struct {
	DaysAhead   int     `mapstructure:"days_ahead" validate:"gte=0"`
	StakePerBet float64 `mapstructure:"stake_per_bet" validate:"required,gt=0"`
	MinValue    float64 `mapstructure:"min_value" validate:"gte=0"`
	DayCap      int     `mapstructure:"day_cap" validate:"gte=0"`
}

// FeedsConfig configures the external odds, results and model collaborators.
type FeedsConfig struct {
	OddsURL        string  `mapstructure:"odds_url" validate:"required,url"`
	ScoreboardURL  string  `mapstructure:"scoreboard_url" validate:"required,url"`
	ModelURL       string  `mapstructure:"model_url" validate:"required,url"`
	APIKey         string  `mapstructure:"api_key"`
	Tournament     string  `mapstructure:"tournament" validate:"required"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	CacheTTLMins   int     `mapstructure:"cache_ttl_minutes" validate:"required,gt=0"`
}

// ServerConfig configures the API, health and metrics listeners.
type ServerConfig struct {
	APIAddress     string `mapstructure:"api_address" validate:"required"`
	HealthPort     string `mapstructure:"health_port" validate:"required"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	AllowedOrigin  string `mapstructure:"allowed_origin"`
}

// ScheduleConfig configures the cron-driven daily pass.
type ScheduleConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CronExpr string `mapstructure:"cron_expr"`
}

// GetDatabaseDSN returns the keyword/value DSN for the Postgres backend.
func (c *Config) GetDatabaseDSN() string {
	db := c.Ledger.Database
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.User, db.Password, db.Name, db.SSLMode,
	)
}
