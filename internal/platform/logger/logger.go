package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

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

// New builds a slog logger writing text (default) or json lines to w.
func New(w io.Writer, level, format, app string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}

	l := slog.New(h)
	if app = strings.TrimSpace(app); app != "" {
		l = l.With("app", app)
	}
	return l
}

// Install builds a stdout logger and makes it the process default.
func Install(level, format, app string) *slog.Logger {
	l := New(os.Stdout, level, format, app)
	slog.SetDefault(l)
	return l
}
