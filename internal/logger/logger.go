// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the root logger. Production gets one JSON object per line;
// anything else gets a human readable console writer. The result is also
// installed as the global log.Logger.
func New(production bool, level string) zerolog.Logger {
	return newWithOutput(production, level, os.Stdout)
}

func newWithOutput(production bool, level string, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	w := out
	if !production {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "doctors-portal").Logger()
	log.Logger = l
	return l
}
