// Package config centralizes all application configuration into typed structs.
//
// Go Learning Note: Configuration Management
// Defaults live in a struct literal (NewDefaultConfig). Load layers an optional
// .env file and GEOCELL_* environment variables on top, then validates the
// result once, at start-up, so the rest of the program can trust it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"geocell/internal/geo"
)

// Environment variables read by Load.
const (
	EnvPort             = "GEOCELL_PORT"
	EnvReadTimeout      = "GEOCELL_READ_TIMEOUT"
	EnvWriteTimeout     = "GEOCELL_WRITE_TIMEOUT"
	EnvShutdownTimeout  = "GEOCELL_SHUTDOWN_TIMEOUT"
	EnvDefaultPrecision = "GEOCELL_DEFAULT_PRECISION"
	EnvIndexPrecision   = "GEOCELL_INDEX_PRECISION"
	EnvMaxQueryRadiusKm = "GEOCELL_MAX_QUERY_RADIUS_KM"
	EnvLogLevel         = "GEOCELL_LOG_LEVEL"
	EnvLogFormat        = "GEOCELL_LOG_FORMAT"
)

// ErrInvalidConfig is returned when a setting is malformed or out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the top-level configuration container.
type Config struct {
	Server ServerConfig
	Geo    GeoConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
//
// Go Learning Note: time.Duration
// Timeouts are time.Duration values, parsed from strings such as "10s" or
// "250ms", so the unit is never ambiguous.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// GeoConfig controls geohash precision for the API and the location index.
// Precision 6 ≈ 1.2 km cells, precision 10 ≈ 1 m cells. The index can never
// answer a query more precisely than IndexPrecision.
type GeoConfig struct {
	DefaultPrecision int
	IndexPrecision   int
	MaxQueryRadiusKm float64
}

// LogConfig selects the slog level (debug, info, warn, error) and handler
// format (text, json).
type LogConfig struct {
	Level  string
	Format string
}

// NewDefaultConfig returns a Config populated with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Geo: GeoConfig{
			DefaultPrecision: geo.DefaultPrecision,
			IndexPrecision:   geo.DefaultPrecision,
			MaxQueryRadiusKm: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the optional envFile and the
// process environment, in increasing order of priority. A missing envFile is
// not an error; variables already set in the environment are never
// overwritten by the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	cfg := NewDefaultConfig()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvPort); ok {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		c.Server.Port = v
	}

	durations := []struct {
		name   string
		target *time.Duration
	}{
		{EnvReadTimeout, &c.Server.ReadTimeout},
		{EnvWriteTimeout, &c.Server.WriteTimeout},
		{EnvShutdownTimeout, &c.Server.ShutdownTimeout},
	}
	for _, d := range durations {
		v, ok := os.LookupEnv(d.name)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, d.name, v, err)
		}
		*d.target = parsed
	}

	ints := []struct {
		name   string
		target *int
	}{
		{EnvDefaultPrecision, &c.Geo.DefaultPrecision},
		{EnvIndexPrecision, &c.Geo.IndexPrecision},
	}
	for _, i := range ints {
		v, ok := os.LookupEnv(i.name)
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, i.name, v, err)
		}
		*i.target = parsed
	}

	if v, ok := os.LookupEnv(EnvMaxQueryRadiusKm); ok {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvMaxQueryRadiusKm, v, err)
		}
		c.Geo.MaxQueryRadiusKm = parsed
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok {
		c.Log.Format = strings.ToLower(v)
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("%w: server port is empty", ErrInvalidConfig)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: server timeouts must be positive", ErrInvalidConfig)
	}
	if err := geo.ValidatePrecision(c.Geo.DefaultPrecision); err != nil {
		return fmt.Errorf("%w: default precision: %v", ErrInvalidConfig, err)
	}
	if err := geo.ValidatePrecision(c.Geo.IndexPrecision); err != nil {
		return fmt.Errorf("%w: index precision: %v", ErrInvalidConfig, err)
	}
	if !(c.Geo.MaxQueryRadiusKm > 0) {
		return fmt.Errorf("%w: max query radius must be positive, got %v", ErrInvalidConfig, c.Geo.MaxQueryRadiusKm)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
