// Package logging builds the daemon's slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	DefaultMaxSizeMB = 10
	DefaultMaxFiles  = 3
)

// Logger is a slog.Logger whose level can change at runtime.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	out   io.Closer
}

// New creates a text logger at level. An empty file logs to stderr;
// otherwise the file is appended to and rotated by size.
func New(level string, file string) (*Logger, error) {
	lv := new(slog.LevelVar)
	lv.Set(ParseLevel(level))

	var (
		w   io.Writer = os.Stderr
		out io.Closer
	)
	if strings.TrimSpace(file) != "" {
		rf, err := OpenRotatingFile(file, DefaultMaxSizeMB, DefaultMaxFiles)
		if err != nil {
			return nil, err
		}
		w, out = rf, rf
	}

	return &Logger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})),
		level:  lv,
		out:    out,
	}, nil
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level string) {
	l.level.Set(ParseLevel(level))
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.out == nil {
		return nil
	}
	return l.out.Close()
}

// ParseLevel converts a level name to a slog.Level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func wrapOpenErr(path string, err error) error {
	return fmt.Errorf("failed to open log file %s: %w", path, err)
}
