package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHash(t *testing.T) {
	a := Hash([]byte("hello"))
	b := Hash([]byte("hello"))
	c := Hash([]byte("world"))

	if a != b {
		t.Error("same input produced different hashes")
	}
	if a == c {
		t.Error("different inputs produced the same hash")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestGraphKey(t *testing.T) {
	a := GraphKey("remote", "pipeline")
	b := GraphKey("remote", "pipeline")
	c := GraphKey("remote", "other")
	d := GraphKey("mongo", "pipeline")

	if a != b {
		t.Error("keys are not deterministic")
	}
	if a == c || a == d {
		t.Error("distinct inputs collided")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss on unknown key.
	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok=%v err=%v, want miss", ok, err)
	}

	// Round trip.
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok, err := c.Get(ctx, "key")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if string(data) != "value" {
		t.Errorf("Get data = %q", data)
	}

	// Delete.
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("Get succeeded after Delete")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()

	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Negative TTL means no expiry is recorded; zero TTL likewise.
	if _, ok, _ := c.Get(ctx, "key"); !ok {
		t.Error("entry without expiry treated as expired")
	}

	if err := c.Set(ctx, "short", []byte("value"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Error("expired entry still served")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Corrupt the entry on disk; the next Get must treat it as a miss.
	hash := Hash([]byte("key"))
	path := filepath.Join(dir, "misc", hash[:2], hash[2:]+".json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := c.Get(ctx, "key"); err != nil || ok {
		t.Errorf("Get(corrupt) = ok=%v err=%v, want clean miss", ok, err)
	}
}

func TestFileCacheKeyspaceLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	key := GraphKey("remote", "pipeline")
	if err := c.Set(ctx, key, []byte("doc"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Graph documents land under their own keyspace directory.
	hash := Hash([]byte(key))
	path := filepath.Join(dir, "graph", hash[:2], hash[2:]+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("entry not at keyspace path: %v", err)
	}

	// The entry records its key so tooling can identify the graph.
	if !strings.Contains(string(data), `"key":"`+key+`"`) {
		t.Errorf("entry does not record its key:\n%s", data)
	}

	// Keys without a keyspace prefix fall back to misc.
	if err := c.Set(ctx, "plain", []byte("doc"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	hash = Hash([]byte("plain"))
	if _, err := os.Stat(filepath.Join(dir, "misc", hash[:2], hash[2:]+".json")); err != nil {
		t.Errorf("unprefixed key not under misc: %v", err)
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := c.Get(ctx, "key"); err != nil || ok {
		t.Errorf("Get = ok=%v err=%v, want permanent miss", ok, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}

	base := errors.New("boom")
	wrapped := Retryable(base)

	if !IsRetryable(wrapped) {
		t.Error("IsRetryable(wrapped) = false")
	}
	if IsRetryable(base) {
		t.Error("IsRetryable(plain) = true")
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error lost from chain")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on the first call: fn runs once.
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("success case: err=%v calls=%d", err, calls)
	}

	// Non-retryable errors return immediately.
	calls = 0
	fatal := errors.New("fatal")
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) || calls != 1 {
		t.Errorf("fatal case: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errors.New("transient"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
