// Package logging builds the process logger: a text or JSON slog handler
// carrying service and version attributes, optionally writing to a
// size-capped file.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/rpggio/hvacquote/internal/config"
)

// ServiceName is attached to every log record.
const ServiceName = "hvacquote"

// New returns a logger for cfg writing to w.
func New(cfg config.LogConfig, version string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler.WithAttrs([]slog.Attr{
		slog.String("service", ServiceName),
		slog.String("version", version),
	}))
}

// ParseLevel converts a level name; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
