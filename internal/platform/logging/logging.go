// Package logging builds the service's slog loggers and carries them through
// request contexts.
//
// Every logger redacts credentials (see redact_handler.go), including the
// password part of PostgreSQL connection strings that pgx may echo in errors.
// main installs the process logger once:
//
//	logger := logging.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr)
//
// The HTTP middleware stores a request-scoped logger carrying request_id and
// correlation_id; lower layers retrieve it with FromContext.
//
// Store failures are logged by the application service with the operation,
// the todo id when there is one, and the full error chain:
//
//	logger.ErrorContext(ctx, "failed to update todo",
//	    slog.String("operation", "UpdateTodo"),
//	    slog.String("todo_id", id.String()),
//	    slog.Any("error", err),
//	)
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

type contextKey struct{}

var (
	initOnce   sync.Once
	initLogger *slog.Logger
)

// New returns a redacting logger writing to w. Format "text" selects
// slog's text handler and anything else JSON. Levels are parsed
// case-insensitively; unknown levels fall back to info. Source locations are
// included at debug level.
func New(level, format string, w io.Writer) *slog.Logger {
	lvl := parseLevel(level)
	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl <= slog.LevelDebug,
		ReplaceAttr: newRedactAttr(),
	}

	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Init builds a logger with New and installs it as slog's default.
// Only the first call has any effect; later calls return the logger installed
// by the first one and ignore their arguments.
func Init(level, format string, w io.Writer) *slog.Logger {
	initOnce.Do(func() {
		initLogger = New(level, format, w)
		slog.SetDefault(initLogger)
	})
	return initLogger
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
