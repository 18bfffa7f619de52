package config

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger builds the application logger.
//
// format "json" writes one JSON object per line; anything else uses a
// human-readable console writer. An invalid level falls back to info and
// logs a warning.
//
// Example:
//
//	logger := config.NewLogger(settings.LogLevel, settings.LogFormat, os.Stderr)
//	logger.Info().Str("dir", settings.OutputDir).Msg("starting batch")
func NewLogger(level, format string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	if !strings.EqualFold(format, "json") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    !isTerminal(out),
			TimeFormat: "15:04:05",
		}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()

	parsed := zerolog.InfoLevel
	if level != "" {
		if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			parsed = l
		} else {
			logger.Warn().Str("invalid_level", level).Msg("Invalid log level, using default 'info'")
		}
	}

	return logger.Level(parsed)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
