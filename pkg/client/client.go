// Package client provides the HTTP client for the upstream Steam catalog API
// with retries, outbound rate limiting and error classification.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/steam-catalog-api/pkg/catalog"
	"github.com/Sternrassler/steam-catalog-api/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Upstream endpoint labels, also used as metric label values.
const (
	endpointApps       = "apps"
	endpointTags       = "tags"
	endpointCategories = "categories"
)

// Prometheus metrics for upstream requests.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_upstream_requests_total",
		Help: "Total upstream catalog requests by endpoint and status",
	}, []string{"endpoint", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_upstream_request_duration_seconds",
		Help:    "Upstream catalog request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_upstream_errors_total",
		Help: "Total upstream catalog errors by class",
	}, []string{"class"})
)

// Client talks to the upstream catalog API. It implements catalog.Source.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	limiter    *ratelimit.Limiter
	config     Config
	logger     zerolog.Logger
}

var _ catalog.Source = (*Client)(nil)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the root of the upstream catalog API.
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration

	// Retry controls retries of server, rate limit and network failures.
	Retry RetryConfig

	// RateLimit paces outbound requests.
	RateLimit ratelimit.Config
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Timeout:   10 * time.Second,
		Retry:     DefaultRetryConfig(),
		RateLimit: ratelimit.DefaultConfig(),
	}
}

// New creates a new upstream client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	baseURL, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	logger := log.With().Str("component", "catalog-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: baseURL,
		limiter: ratelimit.NewLimiter(cfg.RateLimit, logger),
		config:  cfg,
		logger:  logger,
	}, nil
}

// AppInfo fetches the record for a single app. An app unknown upstream (404)
// yields an empty record, not an error.
func (c *Client) AppInfo(ctx context.Context, appID int) (catalog.Record, error) {
	return c.getRecord(ctx, endpointApps, "/apps/"+strconv.Itoa(appID), nil, true)
}

// TagInfo fetches the record describing the given tags.
func (c *Client) TagInfo(ctx context.Context, tagIDs []string) (catalog.Record, error) {
	query := url.Values{"ids": []string{strings.Join(tagIDs, ",")}}
	return c.getRecord(ctx, endpointTags, "/tags", query, false)
}

// CategoryInfo fetches the record describing the given categories.
func (c *Client) CategoryInfo(ctx context.Context, categoryIDs []string) (catalog.Record, error) {
	query := url.Values{"ids": []string{strings.Join(categoryIDs, ",")}}
	return c.getRecord(ctx, endpointCategories, "/categories", query, false)
}

// getRecord performs a GET with rate limiting and retries and decodes the
// body into a record.
func (c *Client) getRecord(ctx context.Context, endpoint, path string, query url.Values, notFoundIsEmpty bool) (catalog.Record, error) {
	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var record catalog.Record
	err := retryWithBackoff(ctx, c.config.Retry, c.logger, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		rec, err := c.do(ctx, endpoint, target.String(), notFoundIsEmpty)
		if err != nil {
			return err
		}
		record = rec
		return nil
	}, classOf)
	if err != nil {
		return nil, err
	}

	return record, nil
}

// do executes a single attempt.
func (c *Client) do(ctx context.Context, endpoint, target string, notFoundIsEmpty bool) (catalog.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", target).
		Msg("Executing upstream request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up. Retrying cannot help.
			return nil, fmt.Errorf("%s request: %w", endpoint, ctx.Err())
		}
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		upstreamRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &UpstreamError{
			Endpoint:   endpoint,
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	upstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotFound && notFoundIsEmpty {
		c.logger.Debug().Str("endpoint", endpoint).Msg("Upstream reported not found")
		return catalog.Record{}, nil
	}

	if resp.StatusCode >= 400 {
		errClass := classifyStatus(resp.StatusCode)
		upstreamErrorsTotal.WithLabelValues(string(errClass)).Inc()

		if errClass == ErrorClassRateLimit {
			if wait, ok := ratelimit.ParseRetryAfter(resp.Header, time.Now()); ok {
				c.limiter.Block(wait)
			}
		}

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Upstream request error")

		return nil, &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	record, err := catalog.DecodeRecord(resp.Body)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "invalid response body",
			Err:        err,
		}
	}

	return record, nil
}

// classifyStatus maps an HTTP error status to an error class.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// RateLimitState returns the current outbound rate limit state.
func (c *Client) RateLimitState() ratelimit.State {
	return c.limiter.State()
}
