package util

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	Logger zerolog.Logger
)

// ParseLevel maps a log_level setting onto a zerolog level. Anything
// unrecognised is info.
func ParseLevel(inlevel string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(inlevel)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func LogInit(inlevel string) {
	LogInitTo(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, inlevel)
}

// LogInitTo points the logger at w. The terminal panel uses it to keep log
// lines off the screen it draws on.
func LogInitTo(w io.Writer, inlevel string) {
	level := ParseLevel(inlevel)
	Logger = zerolog.New(w).Level(level).With().Timestamp().Caller().Logger()

	Logger.Info().Msgf("logging initialized at level %v", level)
}
