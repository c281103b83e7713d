package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Matching  MatchingConfig  `mapstructure:"matching"  validate:"required"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int      `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string   `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
	AllowedOrigins         []string `mapstructure:"allowed_origins"`
}

// ShutdownTimeout returns the graceful shutdown timeout as a duration.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the profile store backend.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite memory"`

	// URL is the connection string. Not used by the memory driver.
	URL string `mapstructure:"url" validate:"required_unless=Driver memory"`

	MaxOpenConns           int `mapstructure:"max_open_conns"            validate:"gte=1"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"            validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetimeMinutes int `mapstructure:"conn_max_lifetime_minutes" validate:"gte=1"`
	ConnectTimeoutSeconds  int `mapstructure:"connect_timeout_seconds"   validate:"gte=1"`

	// HealthCheckSchedule is a cron spec (e.g. "@every 30s") for the
	// connection health monitor. Empty disables the monitor.
	HealthCheckSchedule string `mapstructure:"health_check_schedule"`
}

// MatchingConfig contains the matching engine and profile validation settings.
type MatchingConfig struct {
	MaxAttempts       int      `mapstructure:"max_attempts"        validate:"gte=1,lte=10"`
	MinGraduationYear int      `mapstructure:"min_graduation_year" validate:"gte=1900"`
	MaxGraduationYear int      `mapstructure:"max_graduation_year" validate:"gtefield=MinGraduationYear"`
	Majors            []string `mapstructure:"majors"              validate:"required,min=1,dive,required"`
}

// TelemetryConfig controls OpenTelemetry tracing. Tracing is disabled
// when OTLPEndpoint is empty.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint" validate:"omitempty,url"`
	ServiceName  string `mapstructure:"service_name"`
}
