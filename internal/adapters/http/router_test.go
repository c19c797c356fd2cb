package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	adapthttp "github.com/jsamuelsen11/todo-service/internal/adapters/http"
	"github.com/jsamuelsen11/todo-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/todo-service/mocks"
)

func newTestRouter(t *testing.T, metrics adapthttp.MetricsEndpoint) (http.Handler, *mocks.MockTodoService, *mocks.MockHealthRegistry) {
	t.Helper()
	svc := mocks.NewMockTodoService(t)
	registry := mocks.NewMockHealthRegistry(t)

	router := adapthttp.NewRouter(
		handlers.NewTodoHandler(svc),
		handlers.NewHealthHandler(registry),
		metrics,
	)
	return router, svc, registry
}

func TestRouter_AllRoutesRegistered(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t, adapthttp.MetricsEndpoint{
		Path:    "/metrics",
		Handler: http.NotFoundHandler(),
	})

	expectedRoutes := []string{
		"GET /health/live",
		"GET /health/ready",
		"GET /metrics",
		"POST /api/todos",
		"GET /api/todos",
		"GET /api/todos/{id}",
		"PUT /api/todos/{id}",
		"DELETE /api/todos/{id}",
	}

	chiRouter, ok := router.(*chi.Mux)
	if !ok {
		t.Fatal("router is not *chi.Mux")
	}

	registered := make(map[string]bool)
	err := chi.Walk(chiRouter, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatalf("chi.Walk error: %v", err)
	}

	for _, key := range expectedRoutes {
		if !registered[key] {
			t.Errorf("route %s not registered", key)
		}
	}
	if len(registered) != len(expectedRoutes) {
		t.Errorf("registered %d routes, want %d: %v", len(registered), len(expectedRoutes), registered)
	}
}

func TestRouter_MetricsDisabled(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t, adapthttp.MetricsEndpoint{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	t.Parallel()

	registry := mocks.NewMockHealthRegistry(t)
	registry.EXPECT().CheckAll(mock.Anything).Return(map[string]error{})

	called := false
	testMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	router := adapthttp.NewRouter(
		handlers.NewTodoHandler(mocks.NewMockTodoService(t)),
		handlers.NewHealthHandler(registry),
		adapthttp.MetricsEndpoint{},
		testMW,
	)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if !called {
		t.Error("middleware was not called")
	}
}

func TestRouter_ListTodos(t *testing.T) {
	t.Parallel()

	router, svc, _ := newTestRouter(t, adapthttp.MetricsEndpoint{})
	svc.EXPECT().ListTodos(mock.Anything).Return([]todo.Todo{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/todos", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRouter_ProblemResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "unknown path", method: http.MethodGet, path: "/nonexistent", wantStatus: http.StatusNotFound},
		{name: "versioned path is not served", method: http.MethodGet, path: "/api/v1/todos", wantStatus: http.StatusNotFound},
		{name: "PATCH not supported", method: http.MethodPatch, path: "/api/todos/x", wantStatus: http.StatusMethodNotAllowed},
		{name: "DELETE on collection", method: http.MethodDelete, path: "/api/todos", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, _, _ := newTestRouter(t, adapthttp.MetricsEndpoint{})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("Content-Type = %q, want application/problem+json", ct)
			}
		})
	}
}
