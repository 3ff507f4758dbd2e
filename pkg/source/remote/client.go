// Package remote loads lineage graphs from a knowledge-graph HTTP
// service.
//
// Fetched documents are cached through pkg/cache so repeated renders of
// the same graph avoid the network round trip; only the fetch is
// cached, never rendered output. Transient failures (timeouts, 5xx
// responses) are retried with exponential backoff.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ebiiii/lineal/pkg/cache"
	"github.com/ebiiii/lineal/pkg/dag"
	"github.com/ebiiii/lineal/pkg/errors"
	"github.com/ebiiii/lineal/pkg/observability"
	"github.com/ebiiii/lineal/pkg/source"
)

// DefaultTTL is how long fetched graph documents stay cached.
const DefaultTTL = 24 * time.Hour

// Client fetches lineage documents from a knowledge-graph API.
// The service is expected to answer GET {base}/graphs/{name} with a
// JSON [source.Document].
type Client struct {
	base  *url.URL
	http  *http.Client
	cache cache.Cache
	ttl   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithCache sets the cache backend for fetched documents.
// Without it the client uses a NullCache and always fetches.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.ttl = ttl
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(cl *Client) { cl.http = h }
}

// NewClient creates a client for the knowledge-graph service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse base URL %q", baseURL)
	}
	c := &Client{
		base:  base,
		http:  &http.Client{Timeout: 30 * time.Second},
		cache: cache.NewNullCache(),
		ttl:   DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name identifies the client in logs and hook payloads.
func (c *Client) Name() string { return "remote" }

// Load fetches, caches, and validates the named graph.
func (c *Client) Load(ctx context.Context, name string) (*dag.Graph, error) {
	doc, err := c.FetchDocument(ctx, name)
	if err != nil {
		return nil, err
	}
	return doc.ToGraph()
}

// FetchDocument returns the raw document for a graph, from cache when
// possible.
func (c *Client) FetchDocument(ctx context.Context, name string) (*source.Document, error) {
	key := cache.GraphKey(c.base.Host, name)
	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "graph")
		var doc source.Document
		if err := json.Unmarshal(data, &doc); err == nil {
			return &doc, nil
		}
		// Corrupt entry - fall through to a fresh fetch.
		_ = c.cache.Delete(ctx, key)
	} else {
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	data, err := c.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	var doc source.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode graph %s", name)
	}
	if doc.Name == "" {
		doc.Name = name
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "graph", len(data))
	}
	return &doc, nil
}

// fetch performs the HTTP GET with retry on transient failures.
func (c *Client) fetch(ctx context.Context, name string) ([]byte, error) {
	u := c.base.JoinPath("graphs", name)

	var body []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "fetch graph %s", name))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return errors.New(errors.ErrCodeGraphNotFound, "graph %s not found at %s", name, c.base.Host)
		case resp.StatusCode >= 500:
			return cache.Retryable(errors.New(errors.ErrCodeNetwork, "fetch graph %s: %s", name, resp.Status))
		case resp.StatusCode != http.StatusOK:
			return errors.New(errors.ErrCodeNetwork, "fetch graph %s: unexpected status %s", name, resp.Status)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return cache.Retryable(fmt.Errorf("read response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Ensure Client implements Source.
var _ source.Source = (*Client)(nil)
