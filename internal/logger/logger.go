package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	JSON    = "json"
	TEXT    = "text"
	SERVICE = "service"
)

// Config captures the settings needed to build a logger.
type Config struct {
	Level     string // debug | info | warn | error
	Format    string // json | text
	Output    io.Writer
	AddSource bool
	Service   string
}

// ParseLevel converts textual levels into slog levels, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "dbg":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a slog.Logger.  Output defaults to stdout and format to JSON.
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level), AddSource: cfg.AddSource}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(cfg.Format), TEXT) {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String(SERVICE, cfg.Service)})
	}
	return slog.New(handler)
}

// Discard returns a logger that drops every record.  Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
