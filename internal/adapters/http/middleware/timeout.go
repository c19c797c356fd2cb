package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/todo-service/internal/platform/logging"
)

// Timeout bounds each request by timeout. The handler's context carries the
// deadline, so pool acquisition and queries give up at the same moment the
// client receives a 504 problem response. A non-positive timeout disables the
// middleware.
//
// The handler runs on its own goroutine against a buffered writer; the buffer
// reaches the client only if the handler finishes first. A handler panic is
// re-raised on the serving goroutine so Recovery still sees it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			buf := &bufferedResponse{header: make(http.Header)}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
						return
					}
					close(done)
				}()
				next.ServeHTTP(buf, r.WithContext(ctx))
			}()

			select {
			case p := <-panicked:
				panic(p)
			case <-done:
				// A handler that only returned because the deadline hit still
				// times out.
				if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
					buf.copyTo(w)
					return
				}
			case <-ctx.Done():
			}

			buf.expire()
			logging.FromContext(r.Context()).WarnContext(r.Context(), "request timed out",
				slog.Duration("timeout", timeout),
			)
			dto.WriteProblem(w, r, dto.NewProblem(r, http.StatusGatewayTimeout, "request timed out"))
		})
	}
}

// bufferedResponse holds a handler's response until the timeout middleware
// decides whether to deliver it. Writes after expiry fail with
// http.ErrHandlerTimeout.
type bufferedResponse struct {
	mu      sync.Mutex
	header  http.Header
	body    bytes.Buffer
	status  int
	expired bool
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(code int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.status == 0 && !b.expired {
		b.status = code
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.expired {
		return 0, http.ErrHandlerTimeout
	}
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) expire() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expired = true
}

// copyTo delivers the buffered response. Called after the handler returned.
func (b *bufferedResponse) copyTo(w http.ResponseWriter) {
	b.mu.Lock()
	defer b.mu.Unlock()

	maps.Copy(w.Header(), b.header)
	if b.status != 0 {
		w.WriteHeader(b.status)
	}
	if b.body.Len() > 0 {
		_, _ = b.body.WriteTo(w)
	}
}
