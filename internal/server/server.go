// Package server exposes layouts and cycle charts over a small JSON API for
// the dashboard front-end.
//
// Routes:
//
//	GET  /healthz                         liveness and build info
//	GET  /api/stats                       pipeline, cache and fetch counters
//	GET  /api/layout?source=URL           layout of a remote machine map
//	POST /api/layout                      layout of the posted dataset
//	POST /api/render?format=svg|dot|png|json
//	POST /api/edit                        edit one node, return dataset and layout
//	POST /api/scatter                     scatter chart of posted documents
//	POST /api/cycle?cycle=ID              one cycle's signal against the ideal
//	GET  /api/machines/{machine}/scatter?tool=T
//	GET  /api/machines/{machine}/cycles/{cycle}?variant=V&tool=T
//
// The machine routes need a data root (Config.DataURL). Datasets are posted
// as JSON, or as YAML with a yaml Content-Type. Errors are returned as
// {"error": {"code", "message"}, "request_id"} with a status derived from the
// error code.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stationmap/pkg/observability"
	"github.com/matzehuels/stationmap/pkg/pipeline"
	"github.com/matzehuels/stationmap/pkg/source"
)

// Config configures the server.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// DataURL is the dashboard data root. Optional.
	DataURL string
	// Source is the machine map used by GET /api/layout without ?source=.
	// It defaults to the data root's machine map.
	Source string
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64
}

// DefaultConfig returns the defaults used by `stationmap serve`.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		MaxBodyBytes: source.MaxDocumentSize,
	}
}

// Server serves the API. Create it with [New].
type Server struct {
	cfg      Config
	runner   *pipeline.Runner
	paths    *source.Paths
	recorder *observability.Recorder
	logger   *log.Logger
	started  time.Time
}

// New builds a server on runner. recorder may be nil, in which case
// /api/stats reports zeros; register it with the observability hooks to
// collect counters.
func New(runner *pipeline.Runner, cfg Config, recorder *observability.Recorder, logger *log.Logger) (*Server, error) {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if recorder == nil {
		recorder = observability.NewRecorder()
	}

	s := &Server{
		cfg:      cfg,
		runner:   runner,
		recorder: recorder,
		logger:   logger,
		started:  time.Now(),
	}
	if cfg.DataURL != "" {
		p, err := source.NewPaths(cfg.DataURL)
		if err != nil {
			return nil, fmt.Errorf("data url: %w", err)
		}
		s.paths = &p
		if s.cfg.Source == "" {
			s.cfg.Source = p.Dataset()
		}
	}
	return s, nil
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
