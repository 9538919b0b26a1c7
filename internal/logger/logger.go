package logger

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the logging level
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Format selects the log encoding
type Format string

const (
	// ConsoleFormat is human readable, used by interactive commands
	ConsoleFormat Format = "console"
	// JSONFormat is used by the long-running server
	JSONFormat Format = "json"
)

// Options configures a logger
type Options struct {
	Level  LogLevel
	Format Format
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// ParseFormat parses a string into a Format
func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(format) {
	case "", "console", "text":
		return ConsoleFormat, nil
	case "json":
		return JSONFormat, nil
	default:
		return ConsoleFormat, fmt.Errorf("invalid log format: %s", format)
	}
}

// zapLevel converts LogLevel to zapcore.Level
func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type contextKey struct{}

var loggerKey = contextKey{}

// NewLogger creates a new console logger with the specified level
func NewLogger(level LogLevel) (*zap.Logger, error) {
	return New(Options{Level: level, Format: ConsoleFormat})
}

// New creates a zap logger. Output always goes to stderr so that command
// output written to stdout stays machine readable.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(opts.Level.zapLevel())
	config.OutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.CallerKey = "caller"
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	config.DisableStacktrace = true

	switch opts.Format {
	case JSONFormat:
		config.Encoding = "json"
	default:
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return config.Build()
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

var fallback = sync.OnceValue(func() *zap.Logger {
	logger, err := NewLogger(InfoLevel)
	if err != nil {
		return zap.NewNop()
	}
	return logger
})

// FromContext retrieves the logger from the context.
// If no logger is found, a shared info-level console logger is returned.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return fallback()
}

// SetupContext creates a context with a console logger at the specified level
func SetupContext(ctx context.Context, level LogLevel) (context.Context, error) {
	return Setup(ctx, Options{Level: level, Format: ConsoleFormat})
}

// Setup creates a context carrying a logger built from opts
func Setup(ctx context.Context, opts Options) (context.Context, error) {
	logger, err := New(opts)
	if err != nil {
		return ctx, fmt.Errorf("failed to create logger: %w", err)
	}

	return WithLogger(ctx, logger), nil
}
