// Package config provides configuration management for the gbx-analyzer
// application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app" validate:"required"`
	Reports ReportsConfig `mapstructure:"reports" validate:"required"`
	Filter  FilterConfig  `mapstructure:"filter" validate:"required"`
	Export  ExportConfig  `mapstructure:"export"`
	Storage StorageConfig `mapstructure:"storage"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ReportsConfig describes where backtest reports come from and how they
// are grouped.
type ReportsConfig struct {
	Dir    string       `mapstructure:"dir" validate:"required"`
	Groups []string     `mapstructure:"groups" validate:"required,min=1"`
	Source SourceConfig `mapstructure:"source"`
}

// SourceConfig selects and tunes the report source. The "local" source
// reads Reports.Dir directly; the "http" source downloads the configured
// URLs into Reports.Dir first.
type SourceConfig struct {
	Name              string   `mapstructure:"name" validate:"required,oneof=local http"`
	URLs              []string `mapstructure:"urls" validate:"omitempty,dive,url"`
	AuthToken         string   `mapstructure:"auth_token"`
	TimeoutSeconds    int      `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	MaxRetries        int      `mapstructure:"max_retries" validate:"omitempty,gte=0"`
	RateLimit         float64  `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
	CircuitBreakerMax int      `mapstructure:"circuit_breaker_max" validate:"omitempty,gt=0"`
}

// FilterConfig holds the threshold rules applied to every strategy.
type FilterConfig struct {
	Rules           []string `mapstructure:"rules" validate:"omitempty,dive,thresholdrule"`
	CacheTTLSeconds int      `mapstructure:"cache_ttl_seconds" validate:"omitempty,gt=0"`
}

// ExportConfig controls the result exports written after a batch run.
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	CSV       bool   `mapstructure:"csv"`
	Parquet   bool   `mapstructure:"parquet"`
}

// StorageConfig represents the optional PostgreSQL result sink.
type StorageConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// WatchConfig schedules periodic re-runs of the batch filter.
type WatchConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string for the result sink
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Storage.User,
		c.Storage.Password,
		c.Storage.Host,
		c.Storage.Port,
		c.Storage.Name,
		c.Storage.SSLMode,
	)
}

// SourceTimeout returns the HTTP source timeout with a sane default.
func (c *Config) SourceTimeout() time.Duration {
	if c.Reports.Source.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Reports.Source.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long parsed reports stay memoized.
func (c *Config) CacheTTL() time.Duration {
	if c.Filter.CacheTTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.Filter.CacheTTLSeconds) * time.Second
}
