// Package logging builds the zap loggers used throughout the harness.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is console or json.
	Format string `mapstructure:"format"`

	// Development enables caller annotations and stack traces on warnings.
	Development bool `mapstructure:"development"`

	// Output is a list of zap sink URLs or file paths.
	Output []string `mapstructure:"output"`
}

// DefaultConfig logs warnings and above to stderr in console format.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "console",
		Output: []string{"stderr"},
	}
}

// New builds a logger from the configuration.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Sampling = nil
	}

	switch cfg.Format {
	case "", "console":
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "json":
		zc.Encoding = "json"
	default:
		return nil, fmt.Errorf("log format %q, want console or json", cfg.Format)
	}

	zc.Level = level

	if len(cfg.Output) > 0 {
		zc.OutputPaths = cfg.Output
	}

	return zc.Build()
}

// Must is like New but panics on error.
func Must(cfg Config) *zap.Logger {
	l, err := New(cfg)
	if err != nil {
		panic(err)
	}

	return l
}
