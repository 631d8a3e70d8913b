// Package server exposes taxonomy browsing and richness maps over HTTP.
//
// Routes:
//
//	GET /healthz                     liveness
//	GET /query?family=<name>         heat-map HTML page for a family
//	GET /api/taxa/roots              configured browse roots
//	GET /api/taxa/match?name=&rank=  usage key for a name
//	GET /api/taxa/{id}/children      one level of children
//	GET /api/richness?name=&rank=    richness triples as JSON, CSV or HTML
//	GET /metrics                     Prometheus exposition, when enabled
//
// Handlers share one session memo, so concurrent requests for the same
// node or name trigger a single upstream fetch.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/taxonscope/internal/metrics"
	"github.com/matzehuels/taxonscope/pkg/pipeline"
	"github.com/matzehuels/taxonscope/pkg/taxon"
)

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":8080"

	shutdownTimeout = 30 * time.Second
)

// Config wires a Server to its collaborators.
type Config struct {
	Traverser *taxon.Traverser
	Runner    *pipeline.Runner
	Roots     []taxon.RootSpec
	Metrics   *metrics.Metrics // optional; nil disables /metrics
	Logger    *log.Logger      // optional; nil discards
}

// Server serves the taxonscope HTTP API.
type Server struct {
	cfg    Config
	logger *log.Logger
	router http.Handler
}

// New creates a Server and builds its route tree.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{cfg: cfg, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/query", s.handleQuery)
	if s.cfg.Metrics != nil {
		r.Handle("/metrics", s.cfg.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/taxa", func(tr chi.Router) {
			tr.Get("/roots", s.handleRoots)
			tr.Get("/match", s.handleMatch)
			tr.Get("/{id}/children", s.handleChildren)
		})
		api.Get("/richness", s.handleRichness)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe logs each request and records it in the metrics registry under
// its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)

		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", d,
			"request_id", chimw.GetReqID(r.Context()))
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.ObserveRequest(route, status, d)
		}
	})
}
