package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		config LoggerConfig
		check  func(t *testing.T, output string)
	}{
		{
			name:   "JSON output with info level",
			config: LoggerConfig{Level: "info"},
			check: func(t *testing.T, output string) {
				var logEntry map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(output), &logEntry))
				assert.Equal(t, "info", logEntry["level"])
				assert.Equal(t, "test message", logEntry["message"])
				assert.Contains(t, logEntry, "time")
			},
		},
		{
			name:   "Pretty output",
			config: LoggerConfig{Level: "debug", Pretty: true},
			check: func(t *testing.T, output string) {
				assert.Contains(t, output, "test message")
				assert.Contains(t, output, "INF")
			},
		},
		{
			name:   "With caller info",
			config: LoggerConfig{Level: "info", CallerInfo: true},
			check: func(t *testing.T, output string) {
				var logEntry map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(output), &logEntry))
				assert.Contains(t, logEntry, "caller")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.config.Output = buf

			logger := NewLogger(tt.config)
			logger.Info().Msg("test message")

			tt.check(t, strings.TrimSpace(buf.String()))
		})
	}
}

func TestNewLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(LoggerConfig{Level: "loud", Output: buf})

	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")

	assert.NotContains(t, buf.String(), "debug message")
	assert.Contains(t, buf.String(), "info message")
}

func TestNewLogger_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "automationos.log")
	logger := NewLogger(LoggerConfig{Level: "info", Pretty: true, LogFile: path})

	logger.Info().Str("file", "001_init.sql").Msg("written to disk")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Pretty mode is ignored for files so each line stays machine readable
	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &logEntry))
	assert.Equal(t, "001_init.sql", logEntry["file"])
}

func TestWithContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(LoggerConfig{Level: "info", Output: buf})

	ctx := WithContext(context.Background(), logger)
	fromCtx := FromContext(ctx)
	require.NotNil(t, fromCtx)

	fromCtx.Info().Msg("context test")
	assert.Contains(t, buf.String(), "context test")
}

func TestLoggerConfigs(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()
		assert.Equal(t, "info", config.Level)
		assert.False(t, config.Pretty)
	})

	t.Run("DevelopmentConfig", func(t *testing.T) {
		config := DevelopmentConfig()
		assert.Equal(t, "debug", config.Level)
		assert.True(t, config.Pretty)
		assert.True(t, config.CallerInfo)
	})

	t.Run("CLIConfig", func(t *testing.T) {
		config := CLIConfig("warn", false)
		assert.Equal(t, "warn", config.Level)
		assert.True(t, config.Pretty)
		assert.Equal(t, os.Stdout, config.Output)

		debug := CLIConfig("warn", true)
		assert.Equal(t, "debug", debug.Level)
		assert.True(t, debug.CallerInfo)
	})
}
