package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bell24h/realtime/internal/connection"
	"github.com/bell24h/realtime/internal/events"
	"github.com/bell24h/realtime/internal/metrics"
	"github.com/bell24h/realtime/internal/router"
)

// Server owns the HTTP listener, the WebSocket endpoint and the heartbeat.
type Server struct {
	cfg       Config
	registry  *connection.Registry
	heartbeat *connection.Heartbeat
	router    router.Router
	logger    *slog.Logger
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	db        Pinger

	upgrader websocket.Upgrader

	mu         sync.Mutex
	httpServer *http.Server
	closed     bool
	closeOnce  sync.Once
	readers    sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the collectors and the gatherer served on the metrics path.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithDatabase adds db to the health check.
func WithDatabase(db Pinger) Option {
	return func(s *Server) {
		s.db = db
	}
}

// New creates a server. Nothing listens until Run or Serve.
func New(cfg Config, registry *connection.Registry, heartbeat *connection.Heartbeat, rt router.Router, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		registry:  registry,
		heartbeat: heartbeat,
		router:    rt,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	s.logger = s.logger.With("component", "server")

	s.upgrader = websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}

	return s
}

// Handler returns the mux with every endpoint mounted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(s.cfg.WSPath, s.handleWebSocket)
	mux.HandleFunc(HealthPath, s.handleHealth)

	if s.cfg.MetricsPath != "" && s.gatherer != nil {
		mux.Handle(s.cfg.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	if s.cfg.EventsPath != "" {
		mux.Handle(s.cfg.EventsPath, events.NewHandler(s.router, s.cfg.EventsToken, s.logger))
	}

	return mux
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve starts the heartbeat and serves on ln until ctx is cancelled or the
// listener fails, then closes the server.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return http.ErrServerClosed
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.heartbeat.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("server listening",
		"addr", ln.Addr().String(),
		"ws_path", s.cfg.WSPath,
		"events_path", s.cfg.EventsPath,
	)

	select {
	case <-ctx.Done():
		return s.Close()
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close stops the heartbeat, shuts down the listener and closes every live
// connection. Queued frames are not flushed. Safe to call more than once.
func (s *Server) Close() error {
	var err error

	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		srv := s.httpServer
		s.mu.Unlock()

		s.logger.Info("shutting down server")
		s.heartbeat.Stop()

		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
			defer cancel()
			if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
				err = fmt.Errorf("shutdown http server: %w", shutdownErr)
			}
		}

		conns := s.registry.All()
		for _, c := range conns {
			c.Close()
			s.registry.Unregister(c)
		}
		s.readers.Wait()

		s.logger.Info("server stopped", "closed_connections", len(conns))
	})

	return err
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, r.Header.Get("Origin"))
}
