package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Dashboard   DashboardConfig `mapstructure:"dashboard"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

// DashboardConfig controls where predictions are read from and which
// language the page is rendered in when the request does not ask for one.
type DashboardConfig struct {
	DataPath    string `mapstructure:"data_path"`
	SQLiteTable string `mapstructure:"sqlite_table"`
	Locale      string `mapstructure:"locale"`
}

type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Exporter       string `mapstructure:"exporter"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	LogsEnabled    bool   `mapstructure:"logs_enabled"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
}

var supportedLocales = map[string]bool{"es": true, "en": true}

var supportedExporters = map[string]bool{"stdout": true, "otlp": true, "none": true}

// Load reads config.yaml (if any), a .env file (if any) and environment
// overrides on top of the defaults.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	config.Environment = strings.ToLower(config.Environment)
	config.Dashboard.Locale = strings.ToLower(config.Dashboard.Locale)
	config.Telemetry.Exporter = strings.ToLower(config.Telemetry.Exporter)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values that viper cannot type-check on its own.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	for name, value := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s duration: %w", name, err)
		}
	}

	if strings.TrimSpace(c.Dashboard.DataPath) == "" {
		return errors.New("dashboard data_path must not be empty")
	}

	if !supportedLocales[c.Dashboard.Locale] {
		return fmt.Errorf("unsupported dashboard locale %q", c.Dashboard.Locale)
	}

	if !supportedExporters[c.Telemetry.Exporter] {
		return fmt.Errorf("unsupported telemetry exporter %q", c.Telemetry.Exporter)
	}

	return nil
}

// Duration parses a duration option, returning fallback when it is unset.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func setDefaults(v *viper.Viper) {
	// Environment
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	// Server
	v.SetDefault("server.port", 8501)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Dashboard
	v.SetDefault("dashboard.data_path", "predictions.csv")
	v.SetDefault("dashboard.sqlite_table", "predictions")
	v.SetDefault("dashboard.locale", "es")

	// Telemetry
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.exporter", "stdout")
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	v.SetDefault("telemetry.logs_enabled", false)
	v.SetDefault("telemetry.service_name", "prediction-dashboard")
	v.SetDefault("telemetry.service_version", "1.0.0")
}
