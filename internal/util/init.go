// Package util provides process bootstrap helpers: logger initialization
// and log-level updates, in the style of the teacher's internal/util.
package util

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// InitLogger returns a zerolog logger: pretty console output when
// attached to a terminal (development), JSON otherwise (production).
func InitLogger() zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if isTerminal() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().
			Timestamp().
			Caller().
			Logger()
	}

	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "solana-confirmation-service").
		Logger()
}

// UpdateLogLevel parses a level string (as read from LOG_LEVEL) and
// applies it globally, defaulting to info on an unrecognized value.
func UpdateLogLevel(logger zerolog.Logger, levelStr string) {
	var level zerolog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = zerolog.DebugLevel
	case "info", "":
		level = zerolog.InfoLevel
	case "warn", "warning":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
		logger.Warn().Str("configured_level", levelStr).Msg("unknown log level, defaulting to info")
	}

	zerolog.SetGlobalLevel(level)
	logger.Info().Str("level", level.String()).Msg("log level set")
}

// isTerminal checks if stdout is a terminal (for pretty console output).
func isTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
