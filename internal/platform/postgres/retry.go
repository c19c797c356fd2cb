package postgres

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// jitterFraction is the maximum jitter as a fraction of the delay (±25%).
const jitterFraction = 0.25

// retryPolicy holds the startup retry values extracted from config.RetryConfig.
type retryPolicy struct {
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
	multiplier      float64
}

// retry calls fn until it succeeds, a non-retryable error occurs, ctx is done,
// or the attempts are exhausted.
func retry(ctx context.Context, p retryPolicy, logger *slog.Logger, fn func(context.Context) error) error {
	if p.maxAttempts <= 0 {
		return fmt.Errorf("postgres: max_attempts must be >= 1, got %d", p.maxAttempts)
	}

	var lastErr error
	for attempt := range p.maxAttempts {
		if attempt > 0 {
			delay := backoff(attempt, p)
			logger.WarnContext(ctx, "retrying database connection",
				slog.String("operation", "postgres.Connect"),
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", p.maxAttempts),
				slog.Duration("backoff", delay),
				slog.Any("error", lastErr),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || !isRetryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", p.maxAttempts, lastErr)
}

// backoff calculates the delay for a given retry attempt using exponential
// backoff with ±25% jitter. The attempt parameter is 1-indexed (attempt 1 is
// the first retry).
func backoff(attempt int, p retryPolicy) time.Duration {
	delay := float64(p.initialInterval) * math.Pow(p.multiplier, float64(attempt-1))

	if delay > float64(p.maxInterval) {
		delay = float64(p.maxInterval)
	}

	jitter := delay * jitterFraction
	delay += jitter * (2*unitFloat() - 1)

	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// unitFloat returns a uniformly distributed float64 in [0, 1) drawn from
// crypto/rand, or 0 if the system source fails.
func unitFloat() float64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0
	}
	// Keep the top 53 bits, the width of a float64 mantissa.
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// isRetryable reports whether a connection error may clear up on its own.
// Cancellation, bad credentials and a missing database are permanent.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "28", // invalid_authorization_specification
			"3D": // invalid_catalog_name
			return false
		}
	}

	return true
}
