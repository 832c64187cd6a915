// Command catalog-api serves the Steam catalog HTTP facade.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Sternrassler/steam-catalog-api/pkg/api"
	"github.com/Sternrassler/steam-catalog-api/pkg/cache"
	"github.com/Sternrassler/steam-catalog-api/pkg/client"
	"github.com/Sternrassler/steam-catalog-api/pkg/config"
	"github.com/Sternrassler/steam-catalog-api/pkg/logging"
	"github.com/Sternrassler/steam-catalog-api/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 15 * time.Second

	// redisPingTimeout bounds the startup connectivity check.
	redisPingTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog-api: %v\n", err)
		os.Exit(2)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(cfg.Log.Level)
	logCfg.Pretty = cfg.Log.Pretty
	logging.Setup(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg config.Config) error {
	handler, cleanup, err := newHandler(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Bool("cache", cfg.Cache.Enabled).
			Str("upstream", cfg.Upstream.BaseURL).
			Msg("Starting catalog API server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newHandler wires the upstream client, the cache store and the API server.
// The returned cleanup releases the cache connection.
func newHandler(ctx context.Context, cfg config.Config) (http.Handler, func(), error) {
	upstream, err := newClient(cfg.Upstream)
	if err != nil {
		return nil, nil, fmt.Errorf("create upstream client: %w", err)
	}

	cleanup := func() {}
	var store cache.Store
	if cfg.Cache.Enabled {
		store, cleanup, err = newStore(ctx, cfg.Cache)
		if err != nil {
			return nil, nil, err
		}
	}

	server, err := api.New(api.Options{
		Source:       upstream,
		CacheEnabled: cfg.Cache.Enabled,
		Store:        store,
		Version:      cfg.Version,
		Logger:       logging.NewLogger("api"),
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create api server: %w", err)
	}

	return server.Handler(), cleanup, nil
}

// newClient builds the upstream client. MaxRetries counts retries, so the
// number of attempts is one more.
func newClient(cfg config.UpstreamConfig) (*client.Client, error) {
	clientCfg := client.DefaultConfig(cfg.BaseURL, cfg.UserAgent)
	clientCfg.Timeout = cfg.Timeout
	clientCfg.Retry.MaxAttempts = cfg.MaxRetries + 1
	clientCfg.RateLimit = ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit,
		Burst:             cfg.Burst,
	}
	return client.New(clientCfg)
}

// newStore opens the configured cache backend. Redis must answer a ping.
func newStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		log.Info().Msg("Using in-memory cache")
		return cache.NewMemoryStore(), func() {}, nil

	case config.BackendRedis:
		opts, err := redisOptions(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		redisClient := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
		}
		log.Info().Str("addr", opts.Addr).Msg("Connected to Redis")

		return cache.NewRedisStore(redisClient), func() { redisClient.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// redisOptions accepts a redis:// or rediss:// URL or a bare host:port.
func redisOptions(value string) (*redis.Options, error) {
	if strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://") {
		opts, err := redis.ParseURL(value)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: value}, nil
}
