// Package logger provides opinionated logging capabilities for the mindfold system.
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	writers []io.Writer
	source  bool
}

// New creates a *slog.Logger configured by the given options.
// By default it writes text logs at Info level to os.Stdout.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:   slog.LevelInfo,
		writers: []io.Writer{os.Stdout},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	var w io.Writer
	if len(cfg.writers) == 1 {
		w = cfg.writers[0]
	} else {
		w = io.MultiWriter(cfg.writers...)
	}

	var handler slog.Handler
	switch {
	case cfg.pretty:
		cl := charmlog.NewWithOptions(w, charmlog.Options{
			ReportCaller:    cfg.source,
			ReportTimestamp: true,
		})
		cl.SetLevel(charmLevel(cfg.level))
		handler = cl

	case cfg.json:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.source,
		})

	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.source,
		})
	}

	return slog.New(handler)
}

func charmLevel(level slog.Level) charmlog.Level {
	switch {
	case level <= slog.LevelDebug:
		return charmlog.DebugLevel
	case level <= slog.LevelInfo:
		return charmlog.InfoLevel
	case level <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}
