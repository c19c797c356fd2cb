package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/todo-service/internal/domain"
	"github.com/jsamuelsen11/todo-service/internal/platform/logging"
)

// maxJSONBodyBytes caps request bodies at 1 MiB.
const maxJSONBodyBytes = 1 << 20

// Messages reported under the "body" field when decoding fails.
const (
	msgInvalidJSON  = "invalid JSON"
	msgBodyTooLarge = "must not exceed 1 MiB"
	msgWrongType    = "has the wrong JSON type"
)

// parseUUID reads a UUID path parameter. Malformed ids are a validation
// failure reported under the parameter's name.
func parseUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, &domain.ValidationError{
			Fields: map[string]string{param: "must be a valid UUID"},
		}
	}
	return id, nil
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "failed to encode response",
			slog.Any("error", err),
		)
	}
}

// decodeJSONBody decodes the request body into dst. On failure it writes a
// 400 problem response and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeBody(w, r, dst); err != nil {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{Fields: decodeFailure(err)})
		return false
	}
	return true
}

// decodeBody decodes exactly one JSON value of at most maxJSONBodyBytes.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

var errTrailingData = errors.New("trailing data after JSON value")

// decodeFailure maps a decode error to the field it concerns.
func decodeFailure(err error) map[string]string {
	var (
		tooLarge  *http.MaxBytesError
		typeError *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, io.EOF):
		return map[string]string{"body": domain.MsgMustNotEmpty}
	case errors.As(err, &tooLarge):
		return map[string]string{"body": msgBodyTooLarge}
	case errors.As(err, &typeError) && typeError.Field != "":
		return map[string]string{typeError.Field: msgWrongType}
	default:
		return map[string]string{"body": msgInvalidJSON}
	}
}

type validatable interface {
	Validate() error
}

// decodeAndValidate decodes the request body into dst and validates it.
// On either failure it writes a problem response and returns false.
func decodeAndValidate[T validatable](w http.ResponseWriter, r *http.Request, dst T) bool {
	if !decodeJSONBody(w, r, dst) {
		return false
	}
	if err := dst.Validate(); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return false
	}
	return true
}
