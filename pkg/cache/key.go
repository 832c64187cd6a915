package cache

import (
	"strconv"
	"strings"
)

// keyPrefix namespaces every key this service writes.
const keyPrefix = "catalog"

// Key identifies a cached record.
type Key struct {
	// Kind is the record type (e.g. "app").
	Kind string

	// ID is the identifier within Kind.
	ID string
}

// AppKey returns the key for an app info record.
func AppKey(appID int) Key {
	return Key{Kind: "app", ID: strconv.Itoa(appID)}
}

// String generates a deterministic key string.
// Format: catalog:kind:id
//
// Example:
//
//	catalog:app:570
func (k Key) String() string {
	parts := []string{keyPrefix}
	if k.Kind != "" {
		parts = append(parts, k.Kind)
	}
	return strings.Join(append(parts, k.ID), ":")
}
