// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is the process log level, adjustable after Setup.
var Level = &slog.LevelVar{}

// ParseLevel parses a --log-level value. CRITICAL maps to error, WARNING and
// WARN to warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR", "CRITICAL":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q (valid: DEBUG, INFO, WARNING, ERROR, CRITICAL)", s)
}

// Setup installs a tint handler writing to stderr as the default logger.
func Setup(level slog.Level) *slog.Logger {
	return SetupWriter(colorable.NewColorable(os.Stderr), level, !isatty.IsTerminal(os.Stderr.Fd()))
}

// SetupWriter installs a tint handler writing to w as the default logger.
func SetupWriter(w io.Writer, level slog.Level, noColor bool) *slog.Logger {
	Level.Set(level)
	logger := slog.New(NewHandler(w, noColor))
	slog.SetDefault(logger)
	return logger
}

// SetupFile redirects logging to path, used while the terminal GUI owns the
// screen. The returned closer must be called on exit.
func SetupFile(path string, level slog.Level) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	SetupWriter(f, level, true)
	return f, nil
}

// NewHandler returns a tint handler bound to Level.
func NewHandler(w io.Writer, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:       Level,
		TimeFormat:  "15:04:05.000",
		NoColor:     noColor,
		ReplaceAttr: dropEmpty,
	})
}

// dropEmpty removes empty strings, zero times and nil values from log lines.
// Numbers are kept: a zero count is information.
func dropEmpty(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		return a
	}
	skip := false
	switch t := a.Value.Any().(type) {
	case string:
		skip = t == ""
	case time.Time:
		skip = t.IsZero()
	case nil:
		skip = true
	}
	if skip {
		return slog.Attr{}
	}
	return a
}
