// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/todo-service/internal/adapters/http/handlers"
)

// MetricsEndpoint mounts a metrics exposition handler. The zero value leaves
// the endpoint unregistered.
type MetricsEndpoint struct {
	Path    string
	Handler http.Handler
}

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given, outermost first.
// The handlers already hold their service, and through it the store, so no
// per-request lookup of shared state happens here.
func NewRouter(
	todoHandler *handlers.TodoHandler,
	healthHandler *handlers.HealthHandler,
	metrics MetricsEndpoint,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Unmatched requests get problem responses like every other failure.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteProblem(w, req, dto.NewProblem(req, http.StatusNotFound,
			"no route for "+req.Method+" "+req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteProblem(w, req, dto.NewProblem(req, http.StatusMethodNotAllowed,
			req.Method+" is not supported for "+req.URL.Path))
	})

	// Operational endpoints.
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	if metrics.Handler != nil && metrics.Path != "" {
		r.Method(http.MethodGet, metrics.Path, metrics.Handler)
	}

	// Todo CRUD.
	r.Post("/api/todos", todoHandler.CreateTodo)
	r.Get("/api/todos", todoHandler.ListTodos)
	r.Get("/api/todos/{id}", todoHandler.GetTodo)
	r.Put("/api/todos/{id}", todoHandler.UpdateTodo)
	r.Delete("/api/todos/{id}", todoHandler.DeleteTodo)

	return r
}
