package utils

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		run      func() error
		expected int
		logged   string
	}{
		{
			name:     "Success",
			run:      func() error { return nil },
			expected: 0,
		},
		{
			name:     "Error",
			run:      func() error { return errors.New("migration 002_add_table.sql failed") },
			expected: 1,
		},
		{
			name:     "Panic",
			run:      func() error { panic("nil client") },
			expected: 1,
			logged:   `"panic":"nil client"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			code := ExitCode(zerolog.New(&buf), tt.run)

			assert.Equal(t, tt.expected, code)
			if tt.logged != "" {
				assert.Contains(t, buf.String(), tt.logged)
				assert.Contains(t, buf.String(), `"message":"Unexpected error"`)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
