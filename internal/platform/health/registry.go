// Package health runs the readiness checks behind GET /health/ready.
package health

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/jsamuelsen11/todo-service/internal/ports"
)

// DefaultCheckTimeout bounds each individual health check.
const DefaultCheckTimeout = 2 * time.Second

var _ ports.HealthRegistry = (*Registry)(nil)

// Registry holds named checkers. It is safe for concurrent use; checkers are
// normally registered once at startup and run on every readiness probe.
type Registry struct {
	mu           sync.RWMutex
	checkers     map[string]ports.HealthChecker
	checkTimeout time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithCheckTimeout overrides DefaultCheckTimeout. Non-positive values are ignored.
func WithCheckTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.checkTimeout = d
		}
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		checkers:     make(map[string]ports.HealthChecker),
		checkTimeout: DefaultCheckTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds checker under checker.Name(), replacing any checker
// registered earlier under the same name.
func (r *Registry) Register(checker ports.HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[checker.Name()] = checker
}

// CheckAll runs every checker concurrently, each under its own timeout, and
// returns the results keyed by name. A nil value means healthy.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	checkers := maps.Clone(r.checkers)
	r.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]error, len(checkers))
	)
	for name, c := range checkers {
		wg.Go(func() {
			checkCtx, cancel := context.WithTimeout(ctx, r.checkTimeout)
			defer cancel()

			err := c.HealthCheck(checkCtx)

			mu.Lock()
			results[name] = err
			mu.Unlock()
		})
	}
	wg.Wait()

	return results
}
