// Package cache provides byte-level caching for fetched lineage
// documents.
//
// Sources use it to avoid repeated network round trips when loading
// graphs from remote knowledge-graph services. Rendered output is never
// cached - rendering a validated graph is cheap and deterministic, so
// only the expensive fetch side is worth storing.
//
// Three backends are provided:
//   - FileCache: directory-based storage for CLI usage
//   - RedisCache: Redis-backed storage for server deployments
//   - NullCache: a no-op cache for tests or when caching is disabled
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores opaque byte values under string keys with per-entry TTL.
//
// Get distinguishes a miss (false, nil error) from a failure. A TTL of
// zero means the entry never expires. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Hash returns the hex-encoded SHA-256 of data. Cache keys are hashed
// before hitting a backend so arbitrary strings (URLs, graph names with
// slashes) are always safe.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GraphKey builds the cache key for a fetched graph document.
func GraphKey(source, name string) string {
	return "graph:" + source + ":" + name
}
