// Package postgres owns the PostgreSQL connection pool: construction with
// startup retry, per-operation connection acquisition bounded by an acquire
// timeout, circuit breaking, OpenTelemetry spans and metrics, schema
// migrations and health reporting.
//
// Construction:
//
//	db, err := postgres.Connect(ctx, &cfg.Database, metrics, logger)
//	defer db.Close()
//
// Running a statement (used by the storage adapters):
//
//	err := db.Run(ctx, "insert_todo", func(ctx context.Context, q postgres.Querier) error {
//	    return q.QueryRow(ctx, sql, args...).Scan(&id)
//	})
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen11/todo-service/internal/platform/config"
	"github.com/jsamuelsen11/todo-service/internal/platform/telemetry"
)

// CheckerName is the name reported to the health registry.
const CheckerName = "postgres"

// breakerLogInterval throttles "breaker open" warnings under sustained outage.
const breakerLogInterval = 5 * time.Second

// ErrAcquireTimeout is returned when no pooled connection became available
// within the configured acquire timeout.
var ErrAcquireTimeout = errors.New("timed out acquiring database connection")

// Querier is the statement surface handed to Run callbacks.
// It is satisfied by *pgxpool.Conn, *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the shared, long-lived pool handle. Safe for concurrent use.
type DB struct {
	pool           *pgxpool.Pool
	breaker        *gobreaker.CircuitBreaker[struct{}]
	acquireTimeout time.Duration
	metrics        *telemetry.Metrics
	logger         *slog.Logger
	breakerLog     *rate.Sometimes
}

// Connect builds the pool and waits for the server to answer a ping, retrying
// with exponential backoff. It fails when the URL is malformed or when every
// attempt is exhausted. If metrics is nil, metric recording is skipped.
func Connect(ctx context.Context, cfg *config.DatabaseConfig, metrics *telemetry.Metrics, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		// pgx echoes the connection string in parse errors.
		return nil, errors.New("parsing database url: invalid connection string")
	}
	poolCfg.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	db := newDB(pool, cfg, metrics, logger)

	policy := retryPolicy{
		maxAttempts:     cfg.ConnectRetry.MaxAttempts,
		initialInterval: cfg.ConnectRetry.InitialInterval,
		maxInterval:     cfg.ConnectRetry.MaxInterval,
		multiplier:      cfg.ConnectRetry.Multiplier,
	}
	if err := retry(ctx, policy, logger, pool.Ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	logger.Info("connected to database",
		slog.String("host", poolCfg.ConnConfig.Host),
		slog.String("database", poolCfg.ConnConfig.Database),
		slog.Int("max_conns", int(poolCfg.MaxConns)),
	)

	return db, nil
}

func newDB(pool *pgxpool.Pool, cfg *config.DatabaseConfig, metrics *telemetry.Metrics, logger *slog.Logger) *DB {
	db := &DB{
		pool:           pool,
		acquireTimeout: cfg.AcquireTimeout,
		metrics:        metrics,
		logger:         logger,
		breakerLog:     &rate.Sometimes{Interval: breakerLogInterval},
	}

	db.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        CheckerName,
		MaxRequests: toUint32(cfg.CircuitBreaker.HalfOpenLimit),
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.CircuitBreaker.MaxFailures
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return db
}

// Pool exposes the underlying pool for migrations and collectors.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close releases all pooled connections.
func (db *DB) Close() {
	db.pool.Close()
}

// Name returns the health checker identifier.
func (db *DB) Name() string {
	return CheckerName
}

// HealthCheck reports an open breaker without touching the network, and
// otherwise pings the server.
func (db *DB) HealthCheck(ctx context.Context) error {
	switch db.breaker.State() {
	case gobreaker.StateOpen:
		return fmt.Errorf("%s: failing (circuit breaker open)", CheckerName)
	case gobreaker.StateHalfOpen:
		return fmt.Errorf("%s: degraded (circuit breaker half-open)", CheckerName)
	}
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%s: ping: %w", CheckerName, err)
	}
	return nil
}

// isBreakerSuccess decides which outcomes count against the breaker.
// Absent rows and caller cancellation say nothing about store health. Neither
// does a saturated pool or an exhausted request deadline: those clear when
// load drops, and tripping on them would fail every request for the breaker
// timeout. A store that stops answering still fails readiness through
// HealthCheck.
func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, pgx.ErrNoRows) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrAcquireTimeout)
}

// toUint32 converts a non-negative int to uint32, clamping at the uint32
// maximum. Negative values are treated as zero.
func toUint32(v int) uint32 {
	if v <= 0 {
		return 0
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
