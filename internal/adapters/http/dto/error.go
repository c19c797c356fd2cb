package dto

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/jsamuelsen11/todo-service/internal/domain"
	"github.com/jsamuelsen11/todo-service/internal/platform/logging"
)

// ErrorResponse represents an RFC 9457 Problem Details response.
type ErrorResponse struct {
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Status   int           `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Instance string        `json:"instance,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail represents a single field-level validation error within
// an ErrorResponse.
type ErrorDetail struct {
	Location string `json:"location"`
	Message  string `json:"message"`
	Value    any    `json:"value,omitempty"`
}

type errorDetailsKey struct{}

// WithErrorDetails returns a context that records whether raw store error
// details may be written to clients.
func WithErrorDetails(ctx context.Context, expose bool) context.Context {
	return context.WithValue(ctx, errorDetailsKey{}, expose)
}

// ErrorDetailsExposed reports whether raw error details are enabled for ctx.
// Defaults to false.
func ErrorDetailsExposed(ctx context.Context) bool {
	expose, _ := ctx.Value(errorDetailsKey{}).(bool)
	return expose
}

// NewErrorResponse maps err onto a problem response for r: validation
// failures become 400 with per-field errors, missing todos 404 and anything
// else 500.
func NewErrorResponse(r *http.Request, err error) ErrorResponse {
	resp := NewProblem(r, statusFor(err), errorDetail(r.Context(), err))

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Errors = validationFieldsToDetails(verr.Fields)
	}
	return resp
}

// NewProblem builds a problem response for a status that has no domain error
// behind it, such as an unmatched route or an expired request deadline.
func NewProblem(r *http.Request, status int, detail string) ErrorResponse {
	return ErrorResponse{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.RequestURI,
	}
}

// WriteErrorResponse writes an RFC 9457 error response for the given domain
// error.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	WriteProblem(w, r, NewErrorResponse(r, err))
}

// WriteProblem sets the Content-Type to application/problem+json, writes
// resp.Status and marshals resp as the body.
func WriteProblem(w http.ResponseWriter, r *http.Request, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(resp.Status)

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "failed to encode error response",
			slog.Any("error", encErr),
		)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorDetail picks the client-facing message. Store failures and unknown
// errors only carry their raw text when details are exposed.
func errorDetail(ctx context.Context, err error) string {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) {
		return err.Error()
	}

	expose := ErrorDetailsExposed(ctx)

	var serr *domain.StorageError
	if errors.As(err, &serr) {
		if expose {
			return serr.Error()
		}
		return serr.Redacted()
	}

	if expose {
		return err.Error()
	}
	return http.StatusText(http.StatusInternalServerError)
}

// validationFieldsToDetails converts domain validation fields to sorted
// ErrorDetail entries.
func validationFieldsToDetails(fields map[string]string) []ErrorDetail {
	details := make([]ErrorDetail, 0, len(fields))
	for field, msg := range fields {
		details = append(details, ErrorDetail{
			Location: location(field),
			Message:  msg,
		})
	}
	slices.SortFunc(details, func(a, b ErrorDetail) int {
		return strings.Compare(a.Location, b.Location)
	})
	return details
}

// location prefixes body fields; path parameters are reported as given.
func location(field string) string {
	if field == "id" {
		return "path.id"
	}
	return "body." + field
}
