// Package server exposes the report pipeline over HTTP.
//
// Routes:
//
//	POST /v1/reports/pdf        payload in, PDF attachment out
//	POST /v1/reports/markdown   payload in, Markdown out
//	POST /v1/reports/blocks     payload in, block sequence JSON out
//	POST /v1/compliance/assess  payload in, derived compliance JSON out
//	GET  /v1/archive            archived records, newest first
//	GET  /v1/archive/{id}       archived PDF
//	GET  /healthz
//	GET  /metrics
//
// The report routes accept ?derive=true to fill absent compliance records.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/amlscreen/amlreport/pkg/archive"
	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/duration"
	"github.com/amlscreen/amlreport/pkg/pipeline"
	"github.com/amlscreen/amlreport/pkg/telemetry"
)

// Options configures a Server.
type Options struct {
	// Addr is the listen address (default: ":8080").
	Addr string

	// Pipeline builds reports (default: pipeline.New with the remaining options).
	Pipeline *pipeline.Pipeline

	// Metrics backs /metrics and request counters. Nil disables /metrics.
	Metrics *telemetry.Metrics

	// Archive stores every rendered PDF and enables /v1/archive. Optional.
	Archive *archive.Store

	// Logger for access and error logs (default: slog.Default()).
	Logger *slog.Logger

	// RateLimit is the sustained request rate per second on /v1 routes.
	// Zero or negative disables limiting.
	RateLimit float64

	// Burst is the token bucket size (default: RateLimit).
	Burst int

	// MaxBodyBytes bounds request bodies (default: 2 MiB).
	MaxBodyBytes int64
}

// DefaultOptions returns options with the service defaults applied.
func DefaultOptions() Options {
	return Options{
		Addr:         defaults.ServerAddr,
		RateLimit:    defaults.RateLimitPerSecond,
		Burst:        defaults.RateLimitBurst,
		MaxBodyBytes: defaults.MaxPayloadBytes,
	}
}

// Server is the HTTP front end.
type Server struct {
	opts    Options
	logger  *slog.Logger
	limiter *rate.Limiter
	router  chi.Router
}

// New returns a Server with routes mounted.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = defaults.ServerAddr
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaults.MaxPayloadBytes
	}
	if opts.Burst <= 0 {
		opts.Burst = max(1, int(opts.RateLimit))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Pipeline == nil {
		opts.Pipeline = pipeline.New(pipeline.Options{
			Metrics: opts.Metrics,
			Archive: opts.Archive,
			Logger:  opts.Logger,
		})
	}

	s := &Server{opts: opts, logger: opts.Logger}
	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/reports/pdf", s.handleReport(pipeline.FormatPDF))
		r.Post("/reports/markdown", s.handleReport(pipeline.FormatMarkdown))
		r.Post("/reports/blocks", s.handleReport(pipeline.FormatBlocks))
		r.Post("/compliance/assess", s.handleAssess)
		if s.opts.Archive != nil {
			r.Get("/archive", s.handleArchiveList)
			r.Get("/archive/{id}", s.handleArchiveGet)
		}
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: duration.ServerReadHeader,
		ReadTimeout:       duration.ServerRead,
		WriteTimeout:      duration.ServerWrite,
		IdleTimeout:       duration.ServerIdle,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), duration.ServerShutdown)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
