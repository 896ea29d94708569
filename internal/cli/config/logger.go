package config

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps a log.level value to a slog level. Unknown values are info.
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

// NewLogger builds the process logger from the log settings.
// Verbose forces debug level.
func NewLogger(w io.Writer, lc *LogConfig, verbose bool) *slog.Logger {
	if lc == nil {
		lc = &LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat}
	}
	level := ParseLevel(lc.Level)
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
