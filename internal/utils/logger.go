package utils

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	// Level sets the minimum log level (debug, info, warn, error, fatal, panic)
	Level string
	// Pretty enables human readable console output
	Pretty bool
	// CallerInfo adds file and line number to logs
	CallerInfo bool
	// LogFile specifies the log file path (empty means Output, then stderr)
	LogFile string
	// Output overrides the destination when no LogFile is set
	Output io.Writer
}

// NewLogger creates a new logger instance with the given configuration
func NewLogger(config LoggerConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}

	output := openOutput(config)

	// Pretty output only applies to terminals, never to log files
	if config.Pretty && config.LogFile == "" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	if config.CallerInfo {
		logger = logger.With().Caller().Logger()
	}

	return logger
}

func openOutput(config LoggerConfig) io.Writer {
	fallback := config.Output
	if fallback == nil {
		fallback = os.Stderr
	}

	if config.LogFile == "" {
		return fallback
	}

	if err := os.MkdirAll(filepath.Dir(config.LogFile), 0755); err != nil {
		return fallback
	}

	file, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fallback
	}
	return file
}

// SetupGlobalLogger sets up the global logger with the given configuration
func SetupGlobalLogger(config LoggerConfig) {
	log.Logger = NewLogger(config)
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext retrieves the logger from the context
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() LoggerConfig {
	return LoggerConfig{
		Level: "info",
	}
}

// DevelopmentConfig returns a logger configuration suitable for development
func DevelopmentConfig() LoggerConfig {
	return LoggerConfig{
		Level:      "debug",
		Pretty:     true,
		CallerInfo: true,
	}
}

// CLIConfig returns the configuration used by the one-shot command line
// tools: readable console lines on stdout.
func CLIConfig(level string, debug bool) LoggerConfig {
	if debug {
		level = "debug"
	}
	return LoggerConfig{
		Level:      level,
		Pretty:     true,
		CallerInfo: debug,
		Output:     os.Stdout,
	}
}
