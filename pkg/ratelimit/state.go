// Package ratelimit throttles outbound requests to the upstream catalog API.
// Requests are paced by a token bucket, and a 429 response with a
// Retry-After header pauses all requests until the upstream window reopens.
package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// State is a snapshot of the limiter.
type State struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64

	// Burst is the largest number of requests allowed at once.
	Burst int

	// BlockedUntil is when the upstream allows requests again after a 429.
	// Zero when not blocked.
	BlockedUntil time.Time
}

// IsBlocked returns true if requests are paused at the given time.
func (s State) IsBlocked(now time.Time) bool {
	return now.Before(s.BlockedUntil)
}

// TimeUntilUnblock returns how long requests stay paused.
// Returns 0 if not blocked.
func (s State) TimeUntilUnblock(now time.Time) time.Duration {
	d := s.BlockedUntil.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// ParseRetryAfter reads a Retry-After header expressed either in seconds or
// as an HTTP date. The boolean is false when the header is absent or invalid.
func ParseRetryAfter(headers http.Header, now time.Time) (time.Duration, bool) {
	value := strings.TrimSpace(headers.Get("Retry-After"))
	if value == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}

	at, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	if d := at.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}
