package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache stores fetched lineage documents on disk, one JSON file per
// entry. It backs the CLI, where entries must survive between
// invocations without any server running.
type FileCache struct {
	root string
}

// NewFileCache opens a document cache rooted at dir, creating the
// directory if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{root: dir}, nil
}

// fileEntry is the on-disk shape of one cached document. The original
// key is stored next to the payload so cache tooling can tell which
// graph a file belongs to without reversing the hash.
type fileEntry struct {
	Key       string    `json:"key"`
	Payload   []byte    `json:"payload"`
	SavedAt   time.Time `json:"saved_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (e *fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Get retrieves a cached document. Corrupt and expired entries are
// removed from disk and reported as a miss.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e fileEntry
	if err := json.Unmarshal(data, &e); err != nil || e.expired(time.Now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Payload, true, nil
}

// Set stores a document. A TTL of zero (or less) records no expiry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Key: key, Payload: data, SavedAt: time.Now()}
	if ttl > 0 {
		e.ExpiresAt = e.SavedAt.Add(ttl)
	}

	buf, err := json.Marshal(&e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// Delete removes a cached document. Deleting a missing entry is not an
// error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close is a no-op; every operation opens and closes its own file.
func (c *FileCache) Close() error {
	return nil
}

// path maps a key to <root>/<keyspace>/<hh>/<rest>.json. The keyspace
// is the segment before the first ':' ([GraphKey] produces "graph:…"),
// keeping document types separated on disk; the two-character fan-out
// keeps individual directories small.
func (c *FileCache) path(key string) string {
	space := "misc"
	if i := strings.IndexByte(key, ':'); i > 0 {
		space = key[:i]
	}
	h := Hash([]byte(key))
	return filepath.Join(c.root, space, h[:2], h[2:]+".json")
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
