package utils

import (
	"runtime/debug"

	"github.com/rs/zerolog"
)

// ExitCode runs a command line entry point and returns the process exit
// code: 0 on success, 1 on an error or a panic. A panic is logged with its
// stack.
func ExitCode(logger zerolog.Logger, run func() error) (code int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Unexpected error")
			code = 1
		}
	}()

	if err := run(); err != nil {
		return 1
	}
	return 0
}
