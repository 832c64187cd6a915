package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for outbound rate limiting.
var (
	rateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_upstream_rate_limit_wait_seconds",
		Help:    "Time requests spent waiting for the upstream rate limiter",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	})

	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_upstream_rate_limit_blocks_total",
		Help: "Total number of times the upstream asked us to back off",
	})
)

// Config holds limiter configuration.
type Config struct {
	// RequestsPerSecond is the sustained request rate. Zero or negative
	// disables pacing.
	RequestsPerSecond float64

	// Burst is the token bucket size. Values below 1 are raised to 1.
	Burst int
}

// DefaultConfig returns a conservative configuration for the Steam APIs.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		Burst:             10,
	}
}

// Limiter paces outbound requests. It is safe for concurrent use.
type Limiter struct {
	limiter *rate.Limiter
	logger  zerolog.Logger
	now     func() time.Time

	mu           sync.Mutex
	blockedUntil time.Time
}

// NewLimiter creates a new limiter.
func NewLimiter(cfg Config, logger zerolog.Logger) *Limiter {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
		now:     time.Now,
	}
}

// Wait blocks until a request may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	start := l.now()
	defer func() {
		rateLimitWaitSeconds.Observe(time.Since(start).Seconds())
	}()

	if pause := l.State().TimeUntilUnblock(start); pause > 0 {
		l.logger.Warn().
			Dur("wait_duration", pause).
			Msg("Upstream rate limited - pausing request")

		timer := time.NewTimer(pause)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for upstream window: %w", ctx.Err())
		case <-timer.C:
		}
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}
	return nil
}

// Block pauses all requests for d. A shorter pause never shortens an
// existing one.
func (l *Limiter) Block(d time.Duration) {
	if d <= 0 {
		return
	}

	until := l.now().Add(d)

	l.mu.Lock()
	if until.After(l.blockedUntil) {
		l.blockedUntil = until
	}
	l.mu.Unlock()

	rateLimitBlocksTotal.Inc()
	l.logger.Warn().
		Time("blocked_until", until).
		Msg("Upstream requested back off")
}

// State returns a snapshot of the limiter.
func (l *Limiter) State() State {
	l.mu.Lock()
	blockedUntil := l.blockedUntil
	l.mu.Unlock()

	return State{
		RequestsPerSecond: float64(l.limiter.Limit()),
		Burst:             l.limiter.Burst(),
		BlockedUntil:      blockedUntil,
	}
}
