package ports

import "context"

// HealthChecker is a dependency the readiness probe must see healthy before
// the service takes traffic. postgres.DB is the only one today.
type HealthChecker interface {
	// Name keys the checker's entry in the readiness response.
	Name() string

	// HealthCheck returns nil when the dependency is usable. It must give up
	// when ctx is done.
	HealthCheck(ctx context.Context) error
}

// HealthRegistry runs the registered checkers for GET /health/ready.
type HealthRegistry interface {
	Register(checker HealthChecker)

	// CheckAll returns one result per checker name; nil means healthy.
	CheckAll(ctx context.Context) map[string]error
}
