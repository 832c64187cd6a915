package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// prettyParam is the query parameter selecting indented output.
const prettyParam = "pretty"

// parseFlag parses a boolean query value. Accepted spellings are
// case-insensitive.
func parseFlag(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", value)
	}
}

// prettyFlag reads the pretty query parameter. The last value wins when it is
// repeated; def applies when it is absent.
func prettyFlag(r *http.Request, def bool) (bool, error) {
	values := r.URL.Query()[prettyParam]
	if len(values) == 0 {
		return def, nil
	}
	return parseFlag(values[len(values)-1])
}

// pathParam returns the decoded value of a route parameter. chi matches on
// RawPath when the request has one, so only those values are still escaped.
func pathParam(r *http.Request, name string) string {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value
	}
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

// splitIDs splits a comma-separated identifier list. Items are not trimmed
// or validated; the upstream decides what it accepts.
func splitIDs(value string) []string {
	return strings.Split(value, ",")
}
