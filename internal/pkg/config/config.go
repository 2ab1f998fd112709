package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Region    RegionConfig    `mapstructure:"region"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
	Enabled       bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"`
	Enabled     bool   `mapstructure:"enabled"`
}

// RegionConfig tunes DMS rendering and the region helpers.
type RegionConfig struct {
	DMSPrecision      int     `mapstructure:"dms_precision"`
	PolarSnapLatitude float64 `mapstructure:"polar_snap_latitude"`
	FitLatFactor      float64 `mapstructure:"fit_lat_factor"`
	FitLonDivisor     float64 `mapstructure:"fit_lon_divisor"`
	FitMaxLonHalfSpan float64 `mapstructure:"fit_max_lon_half_span"`
}

// Load reads configuration from .env, file and environment variables.
func Load(service string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file, using process environment")
	}

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", "projwiz")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.endpoint", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("region.dms_precision", 1)
	v.SetDefault("region.polar_snap_latitude", 85.0)
	v.SetDefault("region.fit_lat_factor", 0.8)
	v.SetDefault("region.fit_lon_divisor", 2.5)
	v.SetDefault("region.fit_max_lon_half_span", 180.0)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: PROJWIZ_REGION_DMS_PRECISION → region.dms_precision
	v.SetEnvPrefix("PROJWIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.NATS.SubjectPrefix == "" || strings.ContainsAny(c.NATS.SubjectPrefix, " *>") {
		errs = append(errs, fmt.Sprintf("nats.subject_prefix must be a plain subject token, got %q", c.NATS.SubjectPrefix))
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		errs = append(errs, "telemetry.endpoint is required when telemetry is enabled")
	}
	if c.Region.DMSPrecision < 0 || c.Region.DMSPrecision > 6 {
		errs = append(errs, fmt.Sprintf("region.dms_precision must be 0-6, got %d", c.Region.DMSPrecision))
	}
	if c.Region.PolarSnapLatitude <= 0 || c.Region.PolarSnapLatitude > 90 {
		errs = append(errs, fmt.Sprintf("region.polar_snap_latitude must be in (0, 90], got %g", c.Region.PolarSnapLatitude))
	}
	if c.Region.FitLatFactor <= 0 || c.Region.FitLatFactor > 1 {
		errs = append(errs, fmt.Sprintf("region.fit_lat_factor must be in (0, 1], got %g", c.Region.FitLatFactor))
	}
	if c.Region.FitLonDivisor < 2 {
		errs = append(errs, fmt.Sprintf("region.fit_lon_divisor must be at least 2, got %g", c.Region.FitLonDivisor))
	}
	if c.Region.FitMaxLonHalfSpan <= 0 || c.Region.FitMaxLonHalfSpan > 180 {
		errs = append(errs, fmt.Sprintf("region.fit_max_lon_half_span must be in (0, 180], got %g", c.Region.FitMaxLonHalfSpan))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
