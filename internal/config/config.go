// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riverwatch/riverwatch/internal/hydrology/floodmonitoring"
)

// Config holds configuration for the CLI and the API server.
type Config struct {
	// Flood-monitoring upstream
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     uint64
	CircuitBreaker bool

	// Server
	Port               string
	Environment        string
	RateLimitPerMinute int

	// Logging
	LogLevel  string
	LogFormat string

	// Telemetry
	OTelEnabled  bool
	OTLPEndpoint string

	parseErrs []error
}

// FromEnv reads the configuration from environment variables, applying
// defaults for anything unset. Values that fail to parse keep their default
// and are reported by Validate.
func FromEnv() Config {
	cfg := Config{
		BaseURL:      getEnvOrDefault("FLOOD_API_BASE_URL", floodmonitoring.DefaultBaseURL),
		Port:         getEnvOrDefault("APP_PORT", "8080"),
		Environment:  getEnvOrDefault("APP_ENV", "development"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:    getEnvOrDefault("LOG_FORMAT", "json"),
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	var err error
	if cfg.Timeout, err = time.ParseDuration(getEnvOrDefault("FLOOD_API_TIMEOUT", "30s")); err != nil {
		cfg.Timeout = 30 * time.Second
		cfg.parseErrs = append(cfg.parseErrs, fmt.Errorf("FLOOD_API_TIMEOUT: %w", err))
	}
	if cfg.MaxRetries, err = strconv.ParseUint(getEnvOrDefault("FLOOD_API_MAX_RETRIES", "0"), 10, 8); err != nil {
		cfg.MaxRetries = 0
		cfg.parseErrs = append(cfg.parseErrs, fmt.Errorf("FLOOD_API_MAX_RETRIES: %w", err))
	}
	if cfg.CircuitBreaker, err = strconv.ParseBool(getEnvOrDefault("FLOOD_API_CIRCUIT_BREAKER", "false")); err != nil {
		cfg.CircuitBreaker = false
		cfg.parseErrs = append(cfg.parseErrs, fmt.Errorf("FLOOD_API_CIRCUIT_BREAKER: %w", err))
	}
	if cfg.RateLimitPerMinute, err = strconv.Atoi(getEnvOrDefault("RATE_LIMIT_PER_MINUTE", "100")); err != nil {
		cfg.RateLimitPerMinute = 100
		cfg.parseErrs = append(cfg.parseErrs, fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err))
	}
	if cfg.OTelEnabled, err = strconv.ParseBool(getEnvOrDefault("OTEL_ENABLED", "false")); err != nil {
		cfg.OTelEnabled = false
		cfg.parseErrs = append(cfg.parseErrs, fmt.Errorf("OTEL_ENABLED: %w", err))
	}

	return cfg
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	errs := append([]error(nil), c.parseErrs...)

	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("FLOOD_API_BASE_URL: %q is not an absolute URL", c.BaseURL))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("FLOOD_API_TIMEOUT: must be positive, got %s", c.Timeout))
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT: %q is not a valid port", c.Port))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE: must be positive, got %d", c.RateLimitPerMinute))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT: %q is not json or console", c.LogFormat))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the process runs in the development environment.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
