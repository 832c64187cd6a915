package client

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for retry operations.
var (
	upstreamRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_upstream_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	upstreamRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_upstream_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"error_class"})

	upstreamRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_upstream_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// InitialBackoff is the initial backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// retryWithBackoff executes fn with exponential backoff and ±20% jitter.
// classify maps an error to its class; only retriable classes are retried.
func retryWithBackoff(ctx context.Context, cfg RetryConfig, logger zerolog.Logger, fn func() error, classify func(error) ErrorClass) error {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	var errorClass ErrorClass
	backoff := cfg.InitialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Str("error_class", string(errorClass)).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr = err
		errorClass = classify(err)

		if !shouldRetry(errorClass) {
			return lastErr
		}

		if attempt >= maxAttempts {
			break
		}

		upstreamRetriesTotal.WithLabelValues(string(errorClass)).Inc()

		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		upstreamRetryBackoffSeconds.WithLabelValues(string(errorClass)).Observe(jitter.Seconds())

		logger.Debug().
			Str("error_class", string(errorClass)).
			Int("attempt", attempt).
			Dur("backoff", jitter).
			Msg("Retrying request after backoff")

		timer := time.NewTimer(jitter)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Warn().
				Str("error_class", string(errorClass)).
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * cfg.BackoffMultiplier)
		if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	upstreamRetryExhaustedTotal.WithLabelValues(string(errorClass)).Inc()
	logger.Warn().
		Str("error_class", string(errorClass)).
		Int("max_attempts", maxAttempts).
		Msg("Retry attempts exhausted")

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, maxAttempts, lastErr)
}
