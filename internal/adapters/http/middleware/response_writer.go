// Package middleware provides HTTP middleware for the inbound request pipeline.
//
// The router installs them in this order, outermost first:
//
//	Recovery → RequestID → CorrelationID → ErrorDetails → OpenTelemetry → Logging → Timeout → Handler
//
// Each middleware is a func(http.Handler) http.Handler registered with chi's
// Use, so route patterns resolved by chi are visible to the ones that label
// telemetry.
package middleware

import (
	"log/slog"
	"net/http"
)

// responseWriter records the status and body size of a response. Recovery,
// OpenTelemetry and Logging share one instance per request: newResponseWriter
// returns an existing wrapper instead of nesting another.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
	written       int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.headerWritten {
		return
	}
	rw.statusCode = code
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.headerWritten = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// outcome buckets a final status code for log levels and metric labels.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeClientError
	outcomeServerError
)

func outcomeOf(status int) outcome {
	switch {
	case status >= http.StatusInternalServerError:
		return outcomeServerError
	case status >= http.StatusBadRequest:
		return outcomeClientError
	default:
		return outcomeSuccess
	}
}

func (o outcome) String() string {
	switch o {
	case outcomeServerError:
		return "server_error"
	case outcomeClientError:
		return "client_error"
	default:
		return "success"
	}
}

// logLevel is the level of the "request completed" entry.
func (o outcome) logLevel() slog.Level {
	switch o {
	case outcomeServerError:
		return slog.LevelError
	case outcomeClientError:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
