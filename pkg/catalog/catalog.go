// Package catalog defines the data exchanged with the upstream Steam catalog
// API and the interface every catalog source implements.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// AppsKey is the top-level key an app info record carries when the app exists.
const AppsKey = "apps"

// Record is an opaque catalog document as returned by the upstream API.
type Record map[string]any

// Apps returns the value stored under AppsKey and whether it was present.
func (r Record) Apps() (any, bool) {
	apps, ok := r[AppsKey]
	return apps, ok
}

// Source provides catalog records for apps, tags and categories.
type Source interface {
	// AppInfo returns the record for a single app.
	AppInfo(ctx context.Context, appID int) (Record, error)

	// TagInfo returns the record describing the given tags.
	TagInfo(ctx context.Context, tagIDs []string) (Record, error)

	// CategoryInfo returns the record describing the given categories.
	CategoryInfo(ctx context.Context, categoryIDs []string) (Record, error)
}

// DecodeRecord reads a JSON object into a Record, keeping numbers exact.
func DecodeRecord(r io.Reader) (Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var record Record
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if record == nil {
		record = Record{}
	}
	return record, nil
}
