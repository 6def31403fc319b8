package redis

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/redis/rueidis"
)

const (
	defaultOpTimeout      = 10 * time.Second
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 10 * time.Second
)

// withRetry runs fn up to maxAttempts times under the per-call timeout, with
// exponential backoff between attempts. Server replies are not retried: a
// Redis error is a decision, not an outage. fn must build its commands fresh
// on every call because rueidis recycles them after Do.
func (x *Index) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := x.maxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		attemptCtx := ctx
		cancel := func() {}
		if x.opTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, x.opTimeout)
		}
		lastErr = fn(attemptCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == attempts-1 {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(x.backoffFor(attempt)):
		}
	}
	return lastErr
}

// retryable treats transport failures and per-call timeouts as transient;
// actual server replies and a dead parent context are final.
func retryable(err error) bool {
	if _, ok := rueidis.IsRedisErr(err); ok {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

func (x *Index) backoffFor(attempt int) time.Duration {
	initial := x.initialBackoff
	if initial <= 0 {
		initial = defaultInitialBackoff
	}
	backoff := float64(initial) * math.Pow(2, float64(attempt))
	if maxB := x.maxBackoff; maxB > 0 && backoff > float64(maxB) {
		backoff = float64(maxB)
	}
	return time.Duration(backoff)
}
