// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names a minimum level. Matching is case-insensitive and
// "warning" is accepted for warn.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

const (
	serviceField   = "service"
	componentField = "component"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level written. Empty means info.
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console format.
	Pretty bool

	// Service is stamped on every line when set.
	Service string

	// Output receives the log lines. Nil means os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level for this service.
func DefaultConfig() Config {
	return Config{
		Level:   LevelInfo,
		Service: "steam-catalog-api",
		Output:  os.Stderr,
	}
}

// Setup installs the logger described by cfg as log.Logger and returns it.
// An unknown level falls back to info and is reported once as a warning.
func Setup(cfg Config) zerolog.Logger {
	level, known := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if cfg.Output != nil {
		out = cfg.Output
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	lctx := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		lctx = lctx.Str(serviceField, cfg.Service)
	}
	logger := lctx.Logger()
	log.Logger = logger

	if !known {
		logger.Warn().Str("log_level", string(cfg.Level)).Msg("Unknown log level, using info")
	}
	return logger
}

// parseLevel maps a level name to zerolog. The bool is false for names it
// does not recognise.
func parseLevel(level LogLevel) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel, true
	case "info", "":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	default:
		return zerolog.InfoLevel, false
	}
}

// NewLogger derives a logger from log.Logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str(componentField, component).Logger()
}

// Levels used across the service:
//
//	debug  cache hits, upstream URLs, backoff decisions
//	info   startup and shutdown, cache misses, access log lines
//	warn   cache errors (served from upstream), retries, Retry-After pauses
//	error  upstream failures answered with an error envelope
//
// Request-scoped fields: req_id, app_id, tag_ids, category_ids.
// Upstream fields: endpoint, status, error_class.
