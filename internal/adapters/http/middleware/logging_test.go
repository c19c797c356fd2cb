package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/todo-service/internal/platform/logging"
)

func TestLogging_LogsStartAndCompletion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := middleware.Logging(testLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"x"}`))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/todos", http.NoBody))

	output := buf.String()
	for _, want := range []string{"request started", "request completed", "POST", "/api/todos", "status=201", "bytes=10", "duration"} {
		if !strings.Contains(output, want) {
			t.Errorf("log output missing %q, got: %s", want, output)
		}
	}
}

func TestLogging_CompletionLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		wantLevel string
	}{
		{status: http.StatusOK, wantLevel: "level=INFO"},
		{status: http.StatusNotFound, wantLevel: "level=WARN"},
		{status: http.StatusInternalServerError, wantLevel: "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			handler := middleware.Logging(testLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/todos", http.NoBody))

			var completion string
			for _, line := range strings.Split(buf.String(), "\n") {
				if strings.Contains(line, "request completed") {
					completion = line
				}
			}
			if !strings.Contains(completion, tt.wantLevel) {
				t.Errorf("completion line = %q, want %s", completion, tt.wantLevel)
			}
		})
	}
}

func TestLogging_EnrichesLoggerWithIDs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := middleware.RequestID()(
		middleware.CorrelationID()(
			middleware.Logging(testLogger(&buf))(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				logging.FromContext(r.Context()).Info("handler log")
			})),
		),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", http.NoBody)
	req.Header.Set("X-Request-ID", "req-log-test")
	req.Header.Set("X-Correlation-ID", "corr-log-test")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var handlerLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "handler log") {
			handlerLine = line
		}
	}
	if handlerLine == "" {
		t.Fatal("handler log not captured, enriched logger may not be stored in context")
	}
	if !strings.Contains(handlerLine, "request_id=req-log-test") {
		t.Errorf("handler log missing request_id: %s", handlerLine)
	}
	if !strings.Contains(handlerLine, "correlation_id=corr-log-test") {
		t.Errorf("handler log missing correlation_id: %s", handlerLine)
	}
}

func TestLogging_RedactsSensitiveHeaders(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := middleware.Logging(testLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/todos", http.NoBody)
	req.Header.Set("Authorization", "Bearer super-secret")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if strings.Contains(buf.String(), "super-secret") {
		t.Errorf("log output leaked Authorization header: %s", buf.String())
	}
}
