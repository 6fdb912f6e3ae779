// Package server provides the HTTP API server for clearance decisions.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"veritel-hq/dialguard/pkg/config"
	"veritel-hq/dialguard/pkg/server/handlers"
	"veritel-hq/dialguard/pkg/server/middleware"
	"veritel-hq/dialguard/pkg/telemetry/health"
	"veritel-hq/dialguard/pkg/telemetry/metrics"
)

// Server is the HTTP API server for clearance decisions.
type Server struct {
	config       *config.ServerConfig
	telemetry    *config.TelemetryConfig
	deps         *Dependencies
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Dependencies are the wired components the HTTP surface exposes.
// Collector and Checker are optional; a nil Collector disables the
// metrics endpoint and recording, a nil Checker disables the probes.
type Dependencies struct {
	// Engine evaluates clearance requests.
	Engine handlers.Engine

	// Attempts is the contact attempt log.
	Attempts handlers.AttemptLog

	// Reservations settles allow-reservations when attempts are
	// reported. Optional; nil leaves reservations to expire.
	Reservations handlers.ReservationLedger

	// Decisions is the read surface of the decision record.
	Decisions handlers.DecisionLog

	// Collector records telemetry and serves the metrics endpoint.
	Collector *metrics.Collector

	// Checker serves the liveness and readiness probes.
	Checker *health.Checker

	// Version is reported by the version endpoint.
	Version health.VersionInfo
}

// NewServer creates a new API server.
func NewServer(cfg *config.ServerConfig, telemetryCfg *config.TelemetryConfig, deps *Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:       cfg,
		telemetry:    telemetryCfg,
		deps:         deps,
		logger:       logger,
		shutdownChan: make(chan struct{}),
		isRunning:    false,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"address", s.config.ListenAddress,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// A nil *Collector must stay a nil interface or the handlers would
	// call methods on it.
	var m handlers.Metrics
	if s.deps.Collector != nil {
		m = s.deps.Collector
	}

	clearanceHandler := handlers.NewClearanceHandler(s.deps.Engine, m, s.logger)
	attemptsHandler := handlers.NewAttemptsHandler(s.deps.Attempts, s.deps.Reservations, s.logger)
	auditHandler := handlers.NewAuditHandler(s.deps.Decisions, s.logger)

	// The timeout middleware buffers responses, so it wraps only the
	// decision endpoints. The export endpoint streams and is exempt.
	withTimeout := func(h http.Handler) http.Handler {
		if s.config.RequestTimeout > 0 {
			return middleware.TimeoutMiddleware(s.config.RequestTimeout)(h)
		}
		return h
	}

	mux.Handle("/v1/clearances", withTimeout(clearanceHandler))
	mux.Handle("/v1/attempts", withTimeout(attemptsHandler))
	mux.Handle("/v1/audit", withTimeout(auditHandler))
	mux.Handle("/v1/audit/export", auditHandler.ExportHandler())

	if s.deps.Checker != nil {
		if path := s.telemetry.Health.LivenessPath; path != "" {
			mux.Handle(path, s.deps.Checker.LivenessHandler())
		}
		if path := s.telemetry.Health.ReadinessPath; path != "" {
			mux.Handle(path, s.deps.Checker.ReadinessHandler())
		}
	}

	if s.deps.Collector != nil && s.telemetry.Metrics.Enabled && s.telemetry.Metrics.Path != "" {
		mux.Handle(s.telemetry.Metrics.Path, s.deps.Collector.Handler())
	}

	mux.Handle("/version", health.VersionHandler(s.deps.Version))

	// Apply middleware chain
	var handler http.Handler = mux

	handler = middleware.RequestIDMiddleware(handler)

	handler = middleware.LoggingMiddleware(s.logger)(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler. Exposed for tests that
// exercise the routing and middleware without a listener.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
