package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/todo-service/internal/platform/logging"
	"github.com/jsamuelsen11/todo-service/internal/ports"
)

const (
	statusOK          = "ok"
	statusReady       = "ready"
	statusNotReady    = "not_ready"
	statusUnavailable = "unavailable"
)

// readinessResponse is the body of GET /health/ready.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler handles liveness and readiness HTTP endpoints.
type HealthHandler struct {
	registry ports.HealthRegistry
}

// NewHealthHandler creates a new HealthHandler with the given health registry.
func NewHealthHandler(registry ports.HealthRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Liveness handles GET /health/live. Always returns 200 OK.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": statusOK})
}

// Readiness handles GET /health/ready. Returns 200 if all checks pass,
// 503 if any check fails. Failure text is only included when error details
// are exposed; otherwise failing checks report "unavailable".
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	results := h.registry.CheckAll(r.Context())
	expose := dto.ErrorDetailsExposed(r.Context())
	logger := logging.FromContext(r.Context())

	resp := readinessResponse{
		Status: statusReady,
		Checks: make(map[string]string, len(results)),
	}

	healthy := true
	for name, err := range results {
		if err == nil {
			resp.Checks[name] = statusOK
			continue
		}

		healthy = false
		if expose {
			resp.Checks[name] = err.Error()
		} else {
			resp.Checks[name] = statusUnavailable
		}
		logger.WarnContext(r.Context(), "readiness check failed",
			slog.String("check", name),
			slog.Any("error", err),
		)
	}

	code := http.StatusOK
	if !healthy {
		resp.Status = statusNotReady
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, r, code, resp)
}
