package middleware_test

import (
	"net/http"
	"testing"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/middleware"
)

const redactedValue = "[REDACTED]"

func TestRedactHeaders_RedactsSensitive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		value  string
	}{
		{header: "Authorization", value: "Bearer secret-token"},
		{header: "Proxy-Authorization", value: "Basic dXNlcjpwYXNz"},
		{header: "X-Api-Key", value: "my-api-key-value"},
		{header: "Cookie", value: "session=abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			t.Parallel()

			attrs := middleware.RedactHeaders(http.Header{tt.header: {tt.value}})
			if len(attrs) != 1 {
				t.Fatalf("len(attrs) = %d, want 1", len(attrs))
			}
			if attrs[0].Value.String() != redactedValue {
				t.Errorf("%s value = %q, want %q", tt.header, attrs[0].Value.String(), redactedValue)
			}
		})
	}
}

func TestRedactHeaders_SortedAndJoined(t *testing.T) {
	t.Parallel()

	headers := http.Header{
		"Content-Type":  {"application/json"},
		"Authorization": {"Bearer secret"},
		"Accept":        {"text/html", "application/json"},
	}
	attrs := middleware.RedactHeaders(headers)

	want := []struct{ key, value string }{
		{"Accept", "text/html,application/json"},
		{"Authorization", redactedValue},
		{"Content-Type", "application/json"},
	}
	if len(attrs) != len(want) {
		t.Fatalf("len(attrs) = %d, want %d", len(attrs), len(want))
	}
	for i, w := range want {
		if attrs[i].Key != w.key || attrs[i].Value.String() != w.value {
			t.Errorf("attrs[%d] = %s=%q, want %s=%q", i, attrs[i].Key, attrs[i].Value.String(), w.key, w.value)
		}
	}
}

func TestRedactHeaders_EmptyHeaders(t *testing.T) {
	t.Parallel()

	if attrs := middleware.RedactHeaders(http.Header{}); len(attrs) != 0 {
		t.Errorf("len(attrs) = %d, want 0 for empty headers", len(attrs))
	}
}
