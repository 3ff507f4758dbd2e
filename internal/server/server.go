// Package server exposes lineage graphs over HTTP.
//
// The server wraps a [pipeline.Runner]: every request resolves a graph
// name through the configured source and renders it in the requested
// format. Routes:
//
//	GET /healthz               liveness probe
//	GET /graphs                graph names (sources that support listing)
//	GET /graphs/{name}         rendered graph, format per ?format=
//	GET /graphs/{name}/dot     Graphviz DOT source
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ebiiii/lineal/pkg/errors"
	"github.com/ebiiii/lineal/pkg/pipeline"
)

// Lister is implemented by sources that can enumerate graph names.
type Lister interface {
	Names(ctx context.Context) ([]string, error)
}

// Server serves lineage diagrams over HTTP.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults pipeline.Options
	httpSrv  *http.Server
}

// New creates a server around the given runner. The defaults apply to
// requests that don't override render options via query parameters.
func New(runner *pipeline.Runner, logger *log.Logger, defaults pipeline.Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger, defaults: defaults}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graphs", s.handleList)
	r.Get("/graphs/{name}", s.handleGraph)
	r.Get("/graphs/{name}/dot", s.handleDOT)

	return r
}

// ListenAndServe starts the server on addr and blocks until ctx is
// canceled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

type ctxKey int

const ctxKeyRequestID ctxKey = iota

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", r.Context().Value(ctxKeyRequestID))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	lister, ok := s.runner.Source.(Lister)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "source does not support listing"))
		return
	}
	names, err := lister.Names(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, name := range names {
		w.Write([]byte(name + "\n"))
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	opts := s.requestOptions(r)

	result, err := s.runner.Execute(r.Context(), name, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	switch opts.Format {
	case pipeline.FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, row := range result.Rows {
			w.Write([]byte(row + "\n"))
		}
	case pipeline.FormatDOT:
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		w.Write(result.Data)
	case pipeline.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(result.Data)
	case pipeline.FormatPNG:
		w.Header().Set("Content-Type", "image/png")
		w.Write(result.Data)
	}
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	opts := s.requestOptions(r)
	opts.Format = pipeline.FormatDOT

	result, err := s.runner.Execute(r.Context(), name, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Write(result.Data)
}

// requestOptions merges query parameters over the server defaults.
func (s *Server) requestOptions(r *http.Request) pipeline.Options {
	opts := s.defaults
	opts.Color = false // never style for HTTP clients

	q := r.URL.Query()
	if v := q.Get("format"); v != "" {
		opts.Format = v
	}
	if v := q.Get("compact"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Compact = b
		}
	}
	if v := q.Get("separators"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Separators = b
		}
	}
	if v := q.Get("detailed"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Detailed = b
		}
	}
	return opts
}

// writeError maps error codes to HTTP status codes and writes a plain
// text body so curl output stays readable.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeGraphNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidManifest,
		errors.ErrCodeInvalidGraph, errors.ErrCodeGraphCycle:
		status = http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	case errors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}
	http.Error(w, errors.UserMessage(err), status)
}
