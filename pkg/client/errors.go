package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors other than 429.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a response body that is not a JSON object.
	ErrorClassDecode ErrorClass = "decode"
)

// UpstreamError represents a failed upstream catalog request.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error on %s (status %d): %s: %v",
			e.ErrorClass, e.Endpoint, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream %s error on %s (status %d): %s",
		e.ErrorClass, e.Endpoint, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// classOf returns the class of err, or "" if err is not an UpstreamError.
func classOf(err error) ErrorClass {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.ErrorClass
	}
	return ""
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		// 4xx and undecodable bodies fail the same way on every attempt
		return false
	}
}
