// Package resilience provides fault-tolerance primitives: exponential
// backoff retry, a circuit breaker, and a context-based timeout wrapper.
package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// RetryConfig controls attempt count and backoff shape.
type RetryConfig struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
}

func defaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialDelay:   100 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// Retry runs fn up to MaxAttempts times with exponential backoff and jitter,
// respecting context cancellation between attempts.
func Retry(ctx context.Context, name string, cfg RetryConfig, fn func() error) error {
	defaults := defaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = defaults.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaults.MaxDelay
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = defaults.Multiplier
	}
	if cfg.JitterFraction <= 0 {
		cfg.JitterFraction = defaults.JitterFraction
	}

	logger := slog.Default().With("component", "retry", "operation", name)
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				logger.Info("succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
		}

		delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
		if delay > float64(cfg.MaxDelay) {
			delay = float64(cfg.MaxDelay)
		}
		jitter := delay * cfg.JitterFraction * (2*rand.Float64() - 1)
		sleep := time.Duration(delay + jitter)

		logger.Warn("attempt failed, backing off",
			"attempt", attempt,
			"delay", sleep,
			"error", lastErr,
		)
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, cfg.MaxAttempts, lastErr)
}
