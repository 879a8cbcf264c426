// Package server serves the blog: the post index, individual posts run
// through the post processing pipeline, static assets and operational
// endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"

	"github.com/conneroisu/opaque/internal/cache"
	"github.com/conneroisu/opaque/internal/config"
	"github.com/conneroisu/opaque/internal/errors"
	"github.com/conneroisu/opaque/internal/logging"
	"github.com/conneroisu/opaque/internal/metrics"
	"github.com/conneroisu/opaque/internal/posts"
)

const (
	// AnsiSelector matches the placeholders posts use to embed terminal
	// output.
	AnsiSelector = "opaque-ansi-output"
	// LinkSelector matches the resource links rewritten to the static host.
	LinkSelector = "img[src]"

	shutdownTimeout = 10 * time.Second
)

// Server serves one site.
type Server struct {
	config   *config.Config
	fs       afero.Fs
	index    *posts.Index
	markdown *posts.Markdown
	logger   logging.Logger

	postCache *cache.LRU
	snippets  *cache.LRU
	metrics   *metrics.Collectors
	registry  *prometheus.Registry

	httpServer   *http.Server
	serverMutex  sync.RWMutex // Protects httpServer
	shutdownOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithFs sets the filesystem posts, snippets and assets are read from.
func WithFs(fs afero.Fs) Option {
	return func(s *Server) { s.fs = fs }
}

// WithLogger sets the server logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCaches replaces the process-wide post and snippet caches.
func WithCaches(postCache, snippets *cache.LRU) Option {
	return func(s *Server) {
		s.postCache = postCache
		s.snippets = snippets
	}
}

// New creates a server for the posts in index. It fails when the snippet
// directory is missing so a misconfigured site is caught at startup rather
// than on the first post view.
func New(cfg *config.Config, index *posts.Index, opts ...Option) (*Server, error) {
	s := &Server{
		config:   cfg,
		fs:       afero.NewOsFs(),
		index:    index,
		markdown: posts.NewMarkdown(cfg.Render.CodeStyle),
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("server")
	if s.postCache == nil {
		s.postCache = cache.Posts()
	}
	if s.snippets == nil {
		s.snippets = cache.Snippets()
	}

	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.NewCollectors(s.registry)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternal, "unable to register metrics", err)
	}
	s.metrics = m

	// Validates selectors and the snippet directory once up front.
	if _, err := s.pipeline(""); err != nil {
		return nil, err
	}

	return s, nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(SecurityMiddleware(SecurityConfigFromSite(s.config)))

	r.Get("/", s.handleIndex)
	r.Get("/posts", s.handlePosts)
	r.Get("/posts/{slug}", s.handlePost)
	r.Get("/highlight.css", s.handleHighlightCSS)
	r.Get("/health", s.handleHealth)
	r.Handle("/static/*", s.staticHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.NotFound(s.handleNotFound)

	return r
}

// Start listens on the configured address until ctx is cancelled or
// Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer // Get local copy for safe access
	s.serverMutex.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, err, "Shutdown failed")
		}
	}()

	s.logger.Info(ctx, "Serving", "addr", server.Addr, "posts", s.index.Len())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// requestLogger logs one line per request with its status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info(r.Context(), "Request",
			"method", r.Method,
			"path", logging.SanitizeForLog(r.URL.Path),
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
