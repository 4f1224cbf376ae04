// Package config provides configuration management for the scholargraph client.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/scholarkit/scholargraph/domain"
)

const (
	// DefaultBaseURL is the default base URL for the Semantic Scholar Graph API.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "scholargraph/1.0"

	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxConcurrentRequests bounds simultaneous in-flight requests.
	DefaultMaxConcurrentRequests = 10

	// DefaultRequestsPerWindow and DefaultWindowDuration match the
	// unauthenticated Semantic Scholar ceiling of 100 requests per 5 minutes.
	DefaultRequestsPerWindow = 100
	DefaultWindowDuration    = 5 * time.Minute

	// DefaultRetryAttempts is the number of retries after the first attempt.
	DefaultRetryAttempts = 3

	// DefaultRetryBackoff is the base delay before the first retry.
	DefaultRetryBackoff = time.Second

	// DefaultSimilarityThreshold is the minimum title similarity for a
	// search candidate to count as a match.
	DefaultSimilarityThreshold = 0.9

	// DefaultLimit is the default number of results requested per query.
	DefaultLimit = 100

	// envPrefix is the prefix for environment variable overrides.
	envPrefix = "SCHOLARGRAPH"
)

// Config holds all configuration for a scholargraph client.
type Config struct {
	// BaseURL is the Graph API base URL.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// APIKey is the optional Semantic Scholar API key. Loaded exclusively
	// from the SCHOLARGRAPH_API_KEY environment variable.
	APIKey string `mapstructure:"-"`

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string `mapstructure:"user_agent" validate:"required"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`

	// MaxConcurrentRequests is the upper bound on simultaneous in-flight
	// requests.
	MaxConcurrentRequests int `mapstructure:"max_concurrent_requests" validate:"gte=1"`

	// RequestsPerWindow is the upper bound on requests started per window.
	RequestsPerWindow int `mapstructure:"requests_per_window" validate:"gte=1"`

	// WindowDuration is the duration of the request window.
	WindowDuration time.Duration `mapstructure:"window_duration" validate:"gt=0"`

	// RetryAttempts is the number of retries per request after the first
	// attempt. Applies only to retryable failures (network errors, 429, 5xx).
	RetryAttempts int `mapstructure:"retry_attempts" validate:"gte=0"`

	// RetryBackoff is the base delay before the first retry; it doubles
	// with each further retry.
	RetryBackoff time.Duration `mapstructure:"retry_backoff" validate:"gte=0"`

	// SimilarityThreshold is the minimum title similarity (0, 1] for
	// GetPaperByTitle to accept a candidate.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" validate:"gt=0,lte=1"`

	// DefaultLimit is the number of results requested per query when the
	// caller does not specify one. The API caps search pages at 100.
	DefaultLimit int `mapstructure:"default_limit" validate:"gte=1,lte=100"`

	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables Prometheus metrics collection.
	Enabled bool `mapstructure:"enabled"`
	// Namespace is the metric name prefix.
	Namespace string `mapstructure:"namespace"`
}

// Default returns a Config populated with defaults. The returned config is
// valid and ready for use without further tuning.
func Default() Config {
	return Config{
		BaseURL:               DefaultBaseURL,
		UserAgent:             DefaultUserAgent,
		Timeout:               DefaultTimeout,
		MaxConcurrentRequests: DefaultMaxConcurrentRequests,
		RequestsPerWindow:     DefaultRequestsPerWindow,
		WindowDuration:        DefaultWindowDuration,
		RetryAttempts:         DefaultRetryAttempts,
		RetryBackoff:          DefaultRetryBackoff,
		SimilarityThreshold:   DefaultSimilarityThreshold,
		DefaultLimit:          DefaultLimit,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "scholargraph",
		},
	}
}

// Load loads configuration from environment variables and an optional config
// file (scholargraph.yaml in the working directory or ./config). Environment
// variables use the SCHOLARGRAPH prefix with underscores, e.g.
// SCHOLARGRAPH_MAX_CONCURRENT_REQUESTS=5.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("scholargraph")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The API key is a secret and is loaded exclusively from the
	// environment; the mapstructure:"-" tag keeps it out of config files.
	cfg.APIKey = os.Getenv(envPrefix + "_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("max_concurrent_requests", DefaultMaxConcurrentRequests)
	v.SetDefault("requests_per_window", DefaultRequestsPerWindow)
	v.SetDefault("window_duration", DefaultWindowDuration)
	v.SetDefault("retry_attempts", DefaultRetryAttempts)
	v.SetDefault("retry_backoff", DefaultRetryBackoff)
	v.SetDefault("similarity_threshold", DefaultSimilarityThreshold)
	v.SetDefault("default_limit", DefaultLimit)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.add_source", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "scholargraph")
}

// Validate checks the configuration for programming errors. It fails fast so
// that an invalid config never reaches the network layer.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return err
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return domain.NewValidationError(first.Field(),
				fmt.Sprintf("failed %q constraint", first.Tag()))
		}
		return err
	}
	return nil
}
