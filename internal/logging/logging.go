// Package logging builds the structured loggers used by diskview.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/diskview/internal/config"
)

// NewFromConfig creates a logger writing to stderr and, when configured, to a
// log file. The returned closer is nil when no file was opened.
func NewFromConfig(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	if cfg.File == "" {
		return New(os.Stderr, cfg.Level, cfg.Format), nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	return New(io.MultiWriter(os.Stderr, file), cfg.Level, cfg.Format), file, nil
}

// New creates a logger writing to w.
func New(w io.Writer, level string, format config.LogFormat) *slog.Logger {
	return slog.New(newHandler(format, w, ParseLevel(level)))
}

// NewForTest creates a debug logger writing to w, usually a test's output.
func NewForTest(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// ParseLevel converts a level name to slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func newHandler(format config.LogFormat, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch format {
	case config.LogFormatJSON:
		return slog.NewJSONHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}

// WithRun returns a logger tagged with the run's parameter file.
func WithRun(logger *slog.Logger, parPath string) *slog.Logger {
	return logger.With("run", filepath.Base(parPath))
}
