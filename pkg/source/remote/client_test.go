package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebiiii/lineal/pkg/cache"
	"github.com/ebiiii/lineal/pkg/errors"
)

const graphJSON = `{
  "name": "pipeline",
  "nodes": [
    {"id": "r", "labels": ["raw.csv"]},
    {"id": "a", "parents": ["r"], "labels": ["clean.csv"]}
  ]
}`

func TestLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphs/pipeline", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(graphJSON))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	g, err := client.Load(context.Background(), "pipeline")
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
}

func TestLoadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Load(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrCodeGraphNotFound), "err = %v", err)
}

func TestLoadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(graphJSON))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	g, err := client.Load(context.Background(), "pipeline")
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchDocumentUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(graphJSON))
	}))
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	defer fc.Close()

	client, err := NewClient(srv.URL, WithCache(fc, time.Hour))
	require.NoError(t, err)

	ctx := context.Background()
	first, err := client.FetchDocument(ctx, "pipeline")
	require.NoError(t, err)
	second, err := client.FetchDocument(ctx, "pipeline")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "second fetch should come from cache")
	assert.Equal(t, first.Name, second.Name)
	assert.Len(t, second.Nodes, 2)
}

func TestFetchDocumentNameDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nodes": [{"id": "a"}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	doc, err := client.FetchDocument(context.Background(), "unnamed")
	require.NoError(t, err)
	assert.Equal(t, "unnamed", doc.Name)
}

func TestLoadMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Load(context.Background(), "pipeline")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest), "err = %v", err)
}
