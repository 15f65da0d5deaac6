// Package logging routes the global zerolog logger to a file so that log
// output never lands on the terminal the TUI draws on.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultPath returns the log file location under the xdg state dir.
func DefaultPath() (string, error) {
	return xdg.StateFile(filepath.Join("ripple", "ripple.log"))
}

// ParseLevel maps a config level name to a zerolog level. Unknown or empty
// names give info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Setup points the global logger at path (appending) with the given level.
// The returned closer flushes and closes the file.
func Setup(path, level string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.Logger = New(f, level)
	return f, nil
}

// New builds a console formatted logger writing to w without colors.
func New(w io.Writer, level string) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.DateTime,
	}
	return zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
}
