// Package server exposes the chart and its saved layout over HTTP for a
// browser front-end.
//
// Routes:
//
//	GET    /healthz               liveness and build info
//	GET    /api/chart             graph plus reconciled layout (JSON)
//	GET    /api/chart.svg         rendered chart
//	GET    /api/layout            the saved layout record
//	PUT    /api/layout            save a layout record
//	DELETE /api/layout            delete the saved layout
//	POST   /api/layout/settle     settle free nodes and save the result
//
// Chart and layout routes accept layout, providers, key, width and height
// query parameters; see [Server.options].
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/safetymap/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = "127.0.0.1:8080"

	// RequestTimeout bounds every request, including settles.
	RequestTimeout = 60 * time.Second

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes = 1 << 20

	shutdownTimeout = 5 * time.Second
)

// Server serves one dataset. Base holds the dataset and the defaults each
// request starts from.
type Server struct {
	runner *pipeline.Runner
	base   pipeline.Options
	logger *log.Logger
	router chi.Router

	// writeMu serialises layout writes so two settles cannot interleave
	// their load and save.
	writeMu sync.Mutex
}

// New creates a server around runner. base must name a dataset (DatasetPath
// or Dataset); its other fields are the per-request defaults.
func New(runner *pipeline.Runner, base pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{runner: runner, base: base, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/chart", s.handleChart)
		r.Get("/chart.svg", s.handleChartSVG)
		r.Get("/layout", s.handleGetLayout)
		r.Put("/layout", s.handlePutLayout)
		r.Delete("/layout", s.handleDeleteLayout)
		r.Post("/layout/settle", s.handleSettle)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
