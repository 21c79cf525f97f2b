package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// logFile is shared between a handler and the handlers derived from it with
// WithAttrs/WithGroup so that rotation happens once for all of them.
type logFile struct {
	mutex    sync.Mutex
	file     *os.File
	fileName string
	dir      string
	prefix   string
	now      func() time.Time
}

// DailyFileHandler writes one log file per day and tees every record to stdout.
type DailyFileHandler struct {
	out            *logFile
	attrs          string
	defaultHandler slog.Handler
}

func NewDailyFileHandler(logDir, prefix string, opts *slog.HandlerOptions) (*DailyFileHandler, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	h := &DailyFileHandler{
		out:            &logFile{dir: logDir, prefix: prefix, now: time.Now},
		defaultHandler: slog.NewTextHandler(os.Stdout, opts),
	}

	if err := h.out.rotateIfNeeded(); err != nil {
		return nil, err
	}

	return h, nil
}

func (f *logFile) rotateIfNeeded() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	fileName := fmt.Sprintf("%s-%s.log", f.prefix, f.now().Format("2006-01-02"))
	if fileName == f.fileName {
		return nil
	}

	if f.file != nil {
		f.file.Close()
	}

	file, err := os.OpenFile(filepath.Join(f.dir, fileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	f.file = file
	f.fileName = fileName
	return nil
}

func (f *logFile) write(line string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	_, err := f.file.WriteString(line)
	return err
}

// Close releases the current log file.
func (h *DailyFileHandler) Close() error {
	h.out.mutex.Lock()
	defer h.out.mutex.Unlock()
	if h.out.file == nil {
		return nil
	}
	err := h.out.file.Close()
	h.out.file = nil
	h.out.fileName = ""
	return err
}

func (h *DailyFileHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.out.rotateIfNeeded(); err != nil {
		// If rotation fails, at least log to stdout
		return h.defaultHandler.Handle(ctx, r)
	}

	var attrs strings.Builder
	attrs.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&attrs, " %s=%v", a.Key, a.Value)
		return true
	})

	logLine := fmt.Sprintf("[%s] %-5s %s%s\n", r.Time.Format("2006/01/02 15:04:05.000"), r.Level.String(), r.Message, attrs.String())
	err := h.out.write(logLine)

	if err2 := h.defaultHandler.Handle(ctx, r); err2 != nil && err == nil {
		err = err2
	}
	return err
}

func (h *DailyFileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	return &DailyFileHandler{
		out:            h.out,
		attrs:          b.String(),
		defaultHandler: h.defaultHandler.WithAttrs(attrs),
	}
}

func (h *DailyFileHandler) WithGroup(name string) slog.Handler {
	return &DailyFileHandler{
		out:            h.out,
		attrs:          h.attrs,
		defaultHandler: h.defaultHandler.WithGroup(name),
	}
}

func (h *DailyFileHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.defaultHandler.Enabled(ctx, level)
}
