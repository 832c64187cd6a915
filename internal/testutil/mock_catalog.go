// Package testutil provides testing utilities for the catalog API.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock upstream endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockCatalog is a configurable mock upstream catalog server for testing.
type MockCatalog struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
	LastQuery         url.Values
}

// NewMockCatalog creates a new mock catalog server.
func NewMockCatalog() *MockCatalog {
	mock := &MockCatalog{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.LastQuery = r.URL.Query()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockCatalog) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.LastQuery = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockCatalog) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockCatalog) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetSequence configures a path to answer with each response in turn.
// The last response repeats once the sequence is exhausted.
func (m *MockCatalog) SetSequence(path string, responses ...MockResponse) {
	var (
		mu   sync.Mutex
		next int
	)
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := responses[next]
		if next < len(responses)-1 {
			next++
		}
		mu.Unlock()

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetAppResponse configures the app info endpoint for a single app.
func (m *MockCatalog) SetAppResponse(appID int, resp MockResponse) {
	m.SetResponse(AppPath(appID), resp)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockCatalog) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastQuery returns the query of the most recent request.
func (m *MockCatalog) GetLastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockCatalog) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

// defaultHandler answers unknown paths like the upstream does for unknown apps.
func (m *MockCatalog) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{}`))
}

// AppPath returns the upstream path for an app.
func AppPath(appID int) string {
	return "/apps/" + strconv.Itoa(appID)
}

// AppBody returns a minimal upstream app info document for appID.
func AppBody(appID int, name string) string {
	return fmt.Sprintf(`{"apps": {"%d": {"appid": %d, "common": {"name": %q}}}}`, appID, appID, name)
}

// NewJSONResponse creates a standard 200 OK response.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": "not found"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(retryAfter string) MockResponse {
	resp := MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
	if retryAfter != "" {
		resp.Headers["Retry-After"] = retryAfter
	}
	return resp
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewBadRequestResponse creates a 400 Bad Request response.
func NewBadRequestResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusBadRequest,
		Body:       `{"error": "bad request"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
