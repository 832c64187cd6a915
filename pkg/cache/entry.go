package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sternrassler/steam-catalog-api/pkg/catalog"
)

// Entry represents a cached catalog record.
type Entry struct {
	// Record is the upstream record as it was fetched.
	Record catalog.Record `json:"record"`

	// CachedAt is when we cached this record.
	CachedAt time.Time `json:"cached_at"`
}

// Age returns how long ago the entry was cached.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CachedAt)
}

// encodeEntry serializes an entry for storage.
func encodeEntry(entry *Entry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	return data, nil
}

// decodeEntry parses a stored entry, keeping numbers exact.
func decodeEntry(data []byte) (*Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var entry Entry
	if err := dec.Decode(&entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return &entry, nil
}
