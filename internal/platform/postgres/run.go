package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/todo-service/internal/platform/logging"
	"github.com/jsamuelsen11/todo-service/internal/platform/telemetry"
)

const dbSystem = "postgresql"

// Run executes fn on a pooled connection through the pipeline:
//
//	Circuit Breaker → OTEL Span → Acquire (bounded) → fn → Release
//
// op names the operation in spans, metrics and logs (e.g. "insert_todo").
// The connection is acquired under the acquire timeout; fn itself runs on ctx.
// pgx.ErrNoRows from fn is returned unchanged and does not trip the breaker.
func (db *DB) Run(ctx context.Context, op string, fn func(ctx context.Context, q Querier) error) error {
	start := time.Now()

	_, err := db.breaker.Execute(func() (struct{}, error) {
		spanCtx, span := startSpan(ctx, op)
		defer span.End()

		runErr := db.runOnConn(spanCtx, fn)
		finishSpan(span, runErr)

		return struct{}{}, runErr
	})

	if isBreakerRejection(err) {
		db.breakerLog.Do(func() {
			logging.FromContext(ctx).WarnContext(ctx, "database circuit breaker rejecting operations",
				slog.String("operation", op),
				slog.String("state", db.breaker.State().String()),
			)
		})
	}

	db.recordMetrics(ctx, op, start, err)

	return err
}

func (db *DB) runOnConn(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	conn, err := db.pool.Acquire(acquireCtx)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w after %s", ErrAcquireTimeout, db.acquireTimeout)
		}
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	return fn(ctx, conn)
}

// startSpan creates an OTEL client span for a database operation.
func startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer("postgres")
	return tracer.Start(ctx, "postgres "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", dbSystem),
			attribute.String("db.operation.name", op),
		),
	)
}

// finishSpan records the outcome on the span. Absent rows are not errors.
func finishSpan(span trace.Span, err error) {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// recordMetrics records operation duration and count. Recorded outside the
// breaker so rejections are captured. Safe to call with nil metrics.
func (db *DB) recordMetrics(ctx context.Context, op string, start time.Time, err error) {
	if db.metrics == nil {
		return
	}

	duration := time.Since(start).Seconds()

	attrs := metric.WithAttributes(
		telemetry.AttrDBSystem.String(dbSystem),
		telemetry.AttrDBOperation.String(op),
		telemetry.AttrResult.String(resultLabel(err)),
	)

	db.metrics.DBOperationDuration.Record(ctx, duration, attrs)
	db.metrics.DBOperationTotal.Add(ctx, 1, attrs)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, pgx.ErrNoRows):
		return "not_found"
	case isBreakerRejection(err):
		return "circuit_open"
	case errors.Is(err, ErrAcquireTimeout):
		return "acquire_timeout"
	default:
		return "error"
	}
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
