package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rcssa/match-api/internal/domain"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. MATCH_SERVER_PORT.
const EnvPrefix = "MATCH"

// Load configuration from a .env file, environment variables and an optional
// config.yaml. Environment variables take precedence over values from config
// files. Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return load(".env", ".")
}

func load(envFile string, configPaths ...string) (*Config, error) {
	// .env only fills variables that are not already set in the environment
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)
	v.SetDefault("database.connect_timeout_seconds", 15)
	v.SetDefault("database.health_check_schedule", "@every 30s")

	v.SetDefault("matching.max_attempts", 3)
	v.SetDefault("matching.min_graduation_year", 2024)
	v.SetDefault("matching.max_graduation_year", 2030)
	v.SetDefault("matching.majors", domain.DefaultMajors)

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "match-api")
}
