// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global logger. Human-readable console output on stderr
// is the default; jsonOut switches to plain JSON lines.
func Setup(level string, jsonOut bool) error {
	return SetupWriter(os.Stderr, level, jsonOut)
}

func SetupWriter(w io.Writer, level string, jsonOut bool) error {
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)

	out := w
	if !jsonOut {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}
