package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sternrassler/steam-catalog-api/internal/testutil"
	"github.com/Sternrassler/steam-catalog-api/pkg/cache"
	"github.com/Sternrassler/steam-catalog-api/pkg/config"
	"github.com/alicebob/miniredis/v2"
)

func testConfig(upstreamURL string) config.Config {
	return config.Config{
		Port:    "0",
		Version: "1.2.3",
		Cache: config.CacheConfig{
			Backend: config.BackendMemory,
		},
		Upstream: config.UpstreamConfig{
			BaseURL:    upstreamURL,
			UserAgent:  "catalog-api-test/1.0",
			RateLimit:  0,
			Burst:      1,
			MaxRetries: 0,
		},
		Log: config.LogConfig{Level: "error"},
	}
}

func getJSON(t *testing.T, baseURL, path string) map[string]any {
	t.Helper()

	resp, err := http.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d, body %s", path, resp.StatusCode, body)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("GET %s: decode %q: %v", path, body, err)
	}
	return decoded
}

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantAddr string
		wantDB   int
		wantErr  bool
	}{
		{name: "host and port", value: "localhost:6379", wantAddr: "localhost:6379"},
		{name: "redis url", value: "redis://cache.internal:6380/2", wantAddr: "cache.internal:6380", wantDB: 2},
		{name: "bad url", value: "redis://host:6379/notadb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := redisOptions(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("redisOptions(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if opts.Addr != tt.wantAddr {
				t.Errorf("Addr = %q, want %q", opts.Addr, tt.wantAddr)
			}
			if opts.DB != tt.wantDB {
				t.Errorf("DB = %d, want %d", opts.DB, tt.wantDB)
			}
		})
	}
}

func TestNewClient_Config(t *testing.T) {
	cfg := testConfig("http://catalog.test").Upstream
	cfg.RateLimit = 5
	cfg.Burst = 3

	c, err := newClient(cfg)
	if err != nil {
		t.Fatalf("newClient() error = %v", err)
	}

	state := c.RateLimitState()
	if state.RequestsPerSecond != 5 || state.Burst != 3 {
		t.Errorf("rate limit = %v/%d, want 5/3", state.RequestsPerSecond, state.Burst)
	}

	cfg.BaseURL = "ftp://catalog.test"
	if _, err := newClient(cfg); err == nil {
		t.Error("newClient() with non-http url should fail")
	}
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, cleanup, err := newStore(ctx, config.CacheConfig{Backend: config.BackendMemory})
		if err != nil {
			t.Fatalf("newStore() error = %v", err)
		}
		defer cleanup()

		if _, ok := store.(*cache.MemoryStore); !ok {
			t.Errorf("store = %T, want *cache.MemoryStore", store)
		}
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)

		store, cleanup, err := newStore(ctx, config.CacheConfig{Backend: config.BackendRedis, RedisURL: "redis://" + mr.Addr()})
		if err != nil {
			t.Fatalf("newStore() error = %v", err)
		}
		defer cleanup()

		if _, ok := store.(*cache.RedisStore); !ok {
			t.Errorf("store = %T, want *cache.RedisStore", store)
		}
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		if _, _, err := newStore(ctx, config.CacheConfig{Backend: config.BackendRedis, RedisURL: addr}); err == nil {
			t.Error("newStore() should fail when redis is unreachable")
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		if _, _, err := newStore(ctx, config.CacheConfig{Backend: "memcached"}); err == nil {
			t.Error("newStore() should reject unknown backends")
		}
	})
}

func TestHandler_EndToEnd(t *testing.T) {
	upstream := testutil.NewMockCatalog()
	defer upstream.Close()

	upstream.SetAppResponse(570, testutil.NewJSONResponse(testutil.AppBody(570, "Dota 2")))
	upstream.SetResponse("/tags", testutil.NewJSONResponse(`{"19":{"name":"Action"}}`))

	cfg := testConfig(upstream.URL())
	cfg.Cache.Enabled = true

	handler, cleanup, err := newHandler(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newHandler() error = %v", err)
	}
	defer cleanup()

	srv := httptest.NewServer(handler)
	defer srv.Close()

	body := getJSON(t, srv.URL, "/v1/info/570")
	if body["status"] != "success" {
		t.Errorf("info status = %v, want success", body["status"])
	}
	if _, ok := body["data"].(map[string]any)["570"]; !ok {
		t.Errorf("info data = %v, want key 570", body["data"])
	}

	getJSON(t, srv.URL, "/v1/info/570")
	if got := upstream.GetRequestCount(); got != 1 {
		t.Errorf("upstream requests = %d, want 1 (second lookup cached)", got)
	}

	body = getJSON(t, srv.URL, "/v1/tags/19")
	if upstream.GetLastQuery().Get("ids") != "19" {
		t.Errorf("tags query ids = %q, want 19", upstream.GetLastQuery().Get("ids"))
	}
	if body["status"] != "success" {
		t.Errorf("tags status = %v, want success", body["status"])
	}

	body = getJSON(t, srv.URL, "/v1/version")
	data, _ := body["data"].(map[string]any)
	if data["major"] != float64(1) || data["minor"] != float64(2) || data["patch"] != float64(3) {
		t.Errorf("version data = %v, want 1.2.3", body["data"])
	}
}

func TestHandler_UpstreamFailure(t *testing.T) {
	upstream := testutil.NewMockCatalog()
	defer upstream.Close()

	upstream.SetAppResponse(570, testutil.NewServerErrorResponse())

	handler, cleanup, err := newHandler(context.Background(), testConfig(upstream.URL()))
	if err != nil {
		t.Fatalf("newHandler() error = %v", err)
	}
	defer cleanup()

	srv := httptest.NewServer(handler)
	defer srv.Close()

	body := getJSON(t, srv.URL, "/v1/info/570")
	if body["status"] != "error" {
		t.Errorf("status = %v, want error", body["status"])
	}
}

func TestRun_Shutdown(t *testing.T) {
	upstream := testutil.NewMockCatalog()
	defer upstream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, testConfig(upstream.URL()))
	}()

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run() error = %v", err)
	}
}
