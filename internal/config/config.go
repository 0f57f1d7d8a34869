// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a .env file, an optional YAML file and IMMO_ environment variables.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "console" or "json".
	LogFormat string `koanf:"log_format"`

	// LogFile switches logging to a rotating file. Empty means stdout.
	LogFile       string `koanf:"log_file"`
	LogMaxSizeMB  int    `koanf:"log_max_size_mb"`
	LogMaxBackups int    `koanf:"log_max_backups"`

	// Addr configures the HTTP listen address.
	Addr string `koanf:"addr"`

	// ModelPath and EncoderPath locate the training artifacts (.json or .json.gz).
	ModelPath   string `koanf:"model_path"`
	EncoderPath string `koanf:"encoder_path"`

	// UnknownCategory overrides the encoder artifact's policy: "", "value" or "error".
	UnknownCategory string `koanf:"unknown_category"`

	// CacheSize bounds the prediction cache. 0 disables it.
	CacheSize int `koanf:"cache_size"`

	// RateLimitRPS limits POST /predict per client IP. 0 disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// MaxBodyBytes caps request bodies on POST /predict.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// UIPredictURL makes the form call a remote service instead of the
	// in-process one, e.g. "http://127.0.0.1:8000".
	UIPredictURL string `koanf:"ui_predict_url"`

	// ClientTimeoutMS bounds remote prediction calls.
	ClientTimeoutMS int `koanf:"client_timeout_ms"`

	// DocsAssetDir holds redoc.standalone.js for offline API docs. Empty
	// loads the bundle from its public CDN.
	DocsAssetDir string `koanf:"docs_asset_dir"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "console",
		LogMaxSizeMB:    100,
		LogMaxBackups:   3,
		Addr:            "127.0.0.1:8000",
		ModelPath:       "artifacts/model.json",
		EncoderPath:     "artifacts/encoder.json",
		CacheSize:       10_000,
		RateLimitBurst:  10,
		MaxBodyBytes:    1 << 20,
		ClientTimeoutMS: 5_000,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ModelPath == "":
		return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	case c.EncoderPath == "":
		return fmt.Errorf("%w: encoder_path must not be empty", ErrInvalidConfig)
	case c.LogFormat != "console" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be console or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.CacheSize < 0:
		return fmt.Errorf("%w: cache_size must be >= 0", ErrInvalidConfig)
	case c.RateLimitRPS < 0:
		return fmt.Errorf("%w: rate_limit_rps must be >= 0", ErrInvalidConfig)
	case c.RateLimitRPS > 0 && c.RateLimitBurst < 1:
		return fmt.Errorf("%w: rate_limit_burst must be >= 1 when limiting", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be > 0", ErrInvalidConfig)
	case c.ClientTimeoutMS <= 0:
		return fmt.Errorf("%w: client_timeout_ms must be > 0", ErrInvalidConfig)
	case c.LogFile != "" && (c.LogMaxSizeMB <= 0 || c.LogMaxBackups < 0):
		return fmt.Errorf("%w: log rotation needs log_max_size_mb > 0 and log_max_backups >= 0", ErrInvalidConfig)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}

	switch strings.ToLower(c.UnknownCategory) {
	case "", "value", "error":
	default:
		return fmt.Errorf("%w: unknown_category must be value or error, got %q", ErrInvalidConfig, c.UnknownCategory)
	}

	if c.UIPredictURL != "" {
		u, err := url.Parse(c.UIPredictURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: ui_predict_url %q is not an http(s) url", ErrInvalidConfig, c.UIPredictURL)
		}
	}
	return nil
}
