package openai

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// RetryConfig bounds retries of provider calls.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
	return c
}

// retryWithBackoff runs call up to MaxAttempts times with exponential
// backoff, honoring context cancellation between attempts. Non-retryable
// API errors return immediately.
func retryWithBackoff(ctx context.Context, cfg RetryConfig, log *zap.Logger, op string, call func() error) error {
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = call()
		if lastErr == nil {
			return nil
		}
		if !shouldRetry(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		backoff := backoffFor(attempt, cfg)
		if log != nil {
			log.Warn("provider call failed, retrying",
				zap.String("op", op),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", cfg.MaxAttempts),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}

// shouldRetry treats rate limits, server errors, and transport failures as
// retryable; client errors (4xx other than 429) are not.
func shouldRetry(err error) bool {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		// Network failure or per-call timeout. The outer loop re-checks the
		// parent context, so a dead parent still exits promptly.
		return !errors.Is(err, context.Canceled)
	}

	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func backoffFor(attempt int, cfg RetryConfig) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	return time.Duration(backoff)
}
