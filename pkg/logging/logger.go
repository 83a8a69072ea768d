package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	// CaptureKey is the key used to store the capture name in context
	CaptureKey contextKey = "capture"
)

// Config defines logging configuration
type Config struct {
	// Level is the logging level (debug, info, warn, error)
	Level string
	// Pretty determines if logs should be formatted for human readability
	Pretty bool
	// Output is where logs are written (defaults to os.Stderr, stdout carries the report)
	Output io.Writer
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures global logging based on the provided config
func Setup(cfg Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	// Set up pretty logging if enabled
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	// Set global logger
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// WithCapture tags ctx with the capture being replayed
func WithCapture(ctx context.Context, capture string) context.Context {
	return context.WithValue(ctx, CaptureKey, capture)
}

// FromContext extracts a logger with replay context
func FromContext(ctx context.Context) zerolog.Logger {
	if capture, ok := ctx.Value(CaptureKey).(string); ok {
		return log.With().Str("capture", capture).Logger()
	}
	return log.Logger
}

// NewZapLogger builds the zap logger handed to storage backends,
// honouring the same level and output as the global logger.
func NewZapLogger(cfg Config) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var encoder zapcore.Encoder
	if cfg.Pretty {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(output), level))
}
