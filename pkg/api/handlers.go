package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/steam-catalog-api/pkg/cache"
	"github.com/Sternrassler/steam-catalog-api/pkg/catalog"
	"github.com/Sternrassler/steam-catalog-api/pkg/envelope"
)

// readyTimeout bounds the cache ping done by /ready.
const readyTimeout = 2 * time.Second

// handleAppInfo serves GET /v1/info/{app_id}. pretty defaults to true.
func (s *Server) handleAppInfo(w http.ResponseWriter, r *http.Request) {
	pretty, err := prettyFlag(r, true)
	if err != nil {
		s.writeInvalid(w, err.Error(), true)
		return
	}

	rawID := pathParam(r, "app_id")
	appID, err := strconv.Atoi(rawID)
	if err != nil {
		s.writeInvalid(w, fmt.Sprintf("app_id must be an integer (got %q)", rawID), pretty)
		return
	}

	record, err := s.lookupApp(r.Context(), appID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("app_id", appID).
			Msg("Error while fetching app info")
		s.write(w, envelope.Error(map[string]any{}, pretty))
		return
	}

	apps, found := record.Apps()
	if !found {
		// Unknown apps are a success with an empty payload.
		s.write(w, envelope.Success(map[string]any{strconv.Itoa(appID): map[string]any{}}, pretty))
		return
	}

	s.write(w, envelope.Success(apps, pretty))
}

// lookupApp returns the app record, going through the cache when enabled.
func (s *Server) lookupApp(ctx context.Context, appID int) (catalog.Record, error) {
	if !s.cacheEnabled {
		return s.source.AppInfo(ctx, appID)
	}

	key := cache.AppKey(appID)

	cached, err := s.store.Get(ctx, key)
	switch {
	case err == nil && len(cached) > 0:
		s.logger.Debug().Int("app_id", appID).Msg("App info served from cache")
		return cached, nil
	case err == nil, errors.Is(err, cache.ErrCacheMiss):
		s.logger.Info().Int("app_id", appID).Msg("App info could not be found in the cache")
	default:
		s.logger.Warn().Err(err).Int("app_id", appID).Msg("Cache get error - fetching from upstream")
	}

	record, err := s.source.AppInfo(ctx, appID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, key, record); err != nil {
		s.logger.Warn().Err(err).Int("app_id", appID).Msg("Failed to cache app info")
	}

	return record, nil
}

// handleVersion serves GET /v1/version. pretty defaults to true.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	pretty, err := prettyFlag(r, true)
	if err != nil {
		s.writeInvalid(w, err.Error(), true)
		return
	}

	if s.version == nil {
		s.write(w, envelope.Error(versionUnavailable, pretty))
		return
	}

	s.write(w, envelope.Success(s.version, pretty))
}

// handleTagInfo serves GET /v1/tags/{tag_ids}. pretty defaults to false.
func (s *Server) handleTagInfo(w http.ResponseWriter, r *http.Request) {
	s.serveList(w, r, "tag_ids", "tag", s.source.TagInfo)
}

// handleCategoryInfo serves GET /v1/categories/{category_ids}. pretty defaults to false.
func (s *Server) handleCategoryInfo(w http.ResponseWriter, r *http.Request) {
	s.serveList(w, r, "category_ids", "category", s.source.CategoryInfo)
}

// serveList handles the comma-separated identifier endpoints. Upstream
// failures become an error envelope with empty data.
func (s *Server) serveList(w http.ResponseWriter, r *http.Request, param, kind string,
	fetch func(ctx context.Context, ids []string) (catalog.Record, error)) {
	pretty, err := prettyFlag(r, false)
	if err != nil {
		s.writeInvalid(w, err.Error(), false)
		return
	}

	ids := splitIDs(pathParam(r, param))

	record, err := fetch(r.Context(), ids)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str(param, strings.Join(ids, ",")).
			Msgf("Error while fetching %s info", kind)
		s.write(w, envelope.Error(map[string]any{}, pretty))
		return
	}
	if record == nil {
		record = catalog.Record{}
	}

	s.write(w, envelope.Success(record, pretty))
}

// handleHealth reports that the process is up.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "OK")
}

// handleReady reports whether the cache backend is reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.cacheEnabled {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := s.store.Ping(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "OK")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeStatus(w, http.StatusNotFound, envelope.Error(http.StatusText(http.StatusNotFound), false))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeStatus(w, http.StatusMethodNotAllowed, envelope.Error(http.StatusText(http.StatusMethodNotAllowed), false))
}

// writeInvalid answers a malformed request with 422.
func (s *Server) writeInvalid(w http.ResponseWriter, msg string, pretty bool) {
	s.writeStatus(w, http.StatusUnprocessableEntity, envelope.Error(msg, pretty))
}

// write answers with 200, the status code of every catalog envelope.
func (s *Server) write(w http.ResponseWriter, env envelope.Envelope) {
	s.writeStatus(w, http.StatusOK, env)
}

func (s *Server) writeStatus(w http.ResponseWriter, code int, env envelope.Envelope) {
	if err := envelope.Write(w, code, env); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}
