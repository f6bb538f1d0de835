// Package log sets up the process-wide slog logger.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

type LogLevel = slog.Level

const (
	DebugLevel = slog.LevelDebug
	InfoLevel  = slog.LevelInfo
	WarnLevel  = slog.LevelWarn
	ErrorLevel = slog.LevelError
)

// Option is a logger option.
type Option func(*options)

type options struct {
	level           LogLevel
	json            bool
	dir             string
	alsoLogToStderr bool
	now             func() time.Time
}

func defaultOptions() *options {
	return &options{
		level: InfoLevel,
		now:   time.Now,
	}
}

// WithLevel sets the log level.
// The default log level is InfoLevel.
func WithLevel(level LogLevel) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithJSON switches records to JSON.
func WithJSON() Option {
	return func(o *options) {
		o.json = true
	}
}

// WithLogDir writes records to a dated file in dir instead of stderr. The
// file is rotated daily: the first record of a new day opens a new file.
func WithLogDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithAlsoLogToStderr also logs to stderr when a log directory is set.
func WithAlsoLogToStderr() Option {
	return func(o *options) {
		o.alsoLogToStderr = true
	}
}

// FileName returns the name of the log file used for day t.
func FileName(t time.Time) string {
	return fmt.Sprintf("server-%s.log", t.Format("2006-01-02"))
}

// Init builds the logger and installs it as slog's default. The returned
// closer releases the log file, if any.
func Init(opts ...Option) (io.Closer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if o.dir != "" {
		if err := os.MkdirAll(o.dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f := newDailyFile(o.dir, o.now)
		// An empty write opens today's file.
		if _, err := f.Write(nil); err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
		if o.alsoLogToStderr {
			w = io.MultiWriter(os.Stderr, f)
		}
	}

	slog.SetDefault(New(w, o.level, o.json))
	return closer, nil
}

// New returns a logger writing to w.
func New(w io.Writer, level LogLevel, json bool) *slog.Logger {
	replace := func(groups []string, a slog.Attr) slog.Attr {
		// Remove the directory from the source's filename.
		if a.Key == slog.SourceKey {
			if s, ok := a.Value.Any().(*slog.Source); ok {
				s.File = filepath.Base(s.File)
			}
		}
		return a
	}
	opts := &slog.HandlerOptions{
		AddSource:   true,
		Level:       level,
		ReplaceAttr: replace,
	}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Disable discards all records.
func Disable() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func logf(level slog.Level, format string, args ...any) {
	ctx := context.Background()
	logger := slog.Default()
	if !logger.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // skip [Callers, logf, Infof]
	r := slog.NewRecord(time.Now(), level, fmt.Sprintf(format, args...), pcs[0])
	_ = logger.Handler().Handle(ctx, r)
}

// Debugf logs a debug message.
func Debugf(format string, args ...any) {
	logf(slog.LevelDebug, format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...any) {
	logf(slog.LevelInfo, format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...any) {
	logf(slog.LevelWarn, format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...any) {
	logf(slog.LevelError, format, args...)
}
