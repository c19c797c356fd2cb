package middleware

import (
	"net/http"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/dto"
)

// ErrorDetails returns middleware that records whether raw store error text
// may be written to clients. Error responses written further down the chain
// consult the flag through dto.ErrorDetailsExposed.
func ErrorDetails(expose bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := dto.WithErrorDetails(r.Context(), expose)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
