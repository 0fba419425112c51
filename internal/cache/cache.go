// Package cache is a process local value cache. It backs the in-memory
// flavour of the local key/value store.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache stores arbitrary values under string keys
type Cache interface {
	// Get returns the value and whether the key was found
	Get(ctx context.Context, key string) (interface{}, bool)
	// Set stores value; an expiration of 0 keeps it until deleted
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	Flush(ctx context.Context)
}

// PrefixKV namespaces entries written by the key/value store
const PrefixKV = "kv:v1"

// GenerateKey joins prefix and params with colons
func GenerateKey(prefix string, params ...interface{}) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, prefix)
	for _, param := range params {
		parts = append(parts, fmt.Sprintf("%v", param))
	}
	return strings.Join(parts, ":")
}
