package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps LOG_LEVEL values (DEBUG, INFO, WARNING, ERROR, any case) to a slog
// level. Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "critical", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger. With an empty logDir records only go to stdout.
// The returned closer releases the log file, if any.
func NewLogger(level, logDir string) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	if logDir == "" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts)), nopCloser{}, nil
	}

	fileHandler, err := NewDailyFileHandler(logDir, "docqa", opts)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(fileHandler), fileHandler, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
