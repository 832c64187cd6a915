// Package config loads the service configuration once at startup from
// flags, environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cache backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// defaults are applied for keys not set anywhere else.
var defaults = map[string]interface{}{
	"port":                 "8080",
	"cache":                "",
	"cache_backend":        BackendRedis,
	"redis_url":            "localhost:6379",
	"version":              "",
	"upstream_url":         "",
	"user_agent":           "steam-catalog-api/1.0",
	"upstream_timeout":     "10s",
	"upstream_rate_limit":  10.0,
	"upstream_burst":       10,
	"upstream_max_retries": 3,
	"log_level":            "info",
	"log_pretty":           false,
}

// Config is the full service configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// Version is the reported API version. Empty when not configured.
	Version string

	Cache    CacheConfig
	Upstream UpstreamConfig
	Log      LogConfig
}

// CacheConfig controls the read-through cache.
type CacheConfig struct {
	// Enabled turns on the read-through cache for app info.
	Enabled bool

	// Backend is BackendRedis or BackendMemory.
	Backend string

	// RedisURL is a host:port address or a redis:// URL.
	RedisURL string
}

// UpstreamConfig controls the upstream catalog client.
type UpstreamConfig struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	RateLimit  float64
	Burst      int
	MaxRetries int
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load parses args (without the program name) and builds the configuration.
// Precedence: flags, environment, the .env file named by --config, defaults.
// A missing .env file is not an error.
func Load(args []string) (Config, error) {
	fs := pflag.NewFlagSet("steam-catalog-api", pflag.ContinueOnError)
	fs.String("config", ".env", "Path to an optional .env file.")
	fs.String("port", defaults["port"].(string), "HTTP listen port.")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	for k := range defaults {
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", k, err)
		}
	}
	if err := v.BindPFlag("port", fs.Lookup("port")); err != nil {
		return Config{}, fmt.Errorf("bind flag port: %w", err)
	}

	configFile, _ := fs.GetString("config")
	if err := readEnvFile(v, configFile); err != nil {
		return Config{}, err
	}

	timeout, err := time.ParseDuration(v.GetString("upstream_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("parse upstream_timeout: %w", err)
	}

	cfg := Config{
		Port:    v.GetString("port"),
		Version: strings.TrimSpace(v.GetString("version")),
		Cache: CacheConfig{
			Enabled:  Truthy(v.GetString("cache")),
			Backend:  strings.ToLower(v.GetString("cache_backend")),
			RedisURL: v.GetString("redis_url"),
		},
		Upstream: UpstreamConfig{
			BaseURL:    v.GetString("upstream_url"),
			UserAgent:  v.GetString("user_agent"),
			Timeout:    timeout,
			RateLimit:  v.GetFloat64("upstream_rate_limit"),
			Burst:      v.GetInt("upstream_burst"),
			MaxRetries: v.GetInt("upstream_max_retries"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Pretty: v.GetBool("log_pretty"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// readEnvFile merges a dotenv file into v if it exists.
func readEnvFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

// Validate reports configuration that cannot start the service.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream_url is required")
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("upstream_max_retries must be >= 0 (got %d)", c.Upstream.MaxRetries)
	}
	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case BackendRedis:
			if c.Cache.RedisURL == "" {
				return fmt.Errorf("redis_url is required for the redis cache backend")
			}
		case BackendMemory:
		default:
			return fmt.Errorf("unknown cache_backend %q", c.Cache.Backend)
		}
	}
	return nil
}

// Truthy reports whether a flag-like string enables a feature. Any non-empty
// value does, except the usual spellings of false.
func Truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}
