// Package server provides the HTTP API server for clearance decisions.
//
// This package ties together the decision engine, the attempt log, the
// decision record, and the telemetry endpoints, and provides server
// lifecycle management including start, graceful shutdown, and signal
// handling.
//
// # Architecture
//
// The server package is the top-level HTTP orchestrator that:
//   - Sets up routes and handlers
//   - Chains middleware for cross-cutting concerns
//   - Manages graceful shutdown
//   - Handles OS signals (SIGTERM, SIGINT)
//
// TLS is not terminated here. The service is designed to sit behind the
// dialer infrastructure's ingress, which owns certificates; the listener
// binds to localhost by default.
//
// # Basic Usage
//
// Creating and starting a server:
//
//	srv := server.NewServer(&cfg.Server, &cfg.Telemetry, &server.Dependencies{
//	    Engine:       engine,
//	    Attempts:     attemptStore,
//	    Reservations: coordinator,
//	    Decisions:    decisionStore,
//	    Collector:    collector,
//	    Checker:      checker,
//	}, logger)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server shuts down on SIGTERM or SIGINT, or programmatically:
//
//	if err := srv.Shutdown(context.Background()); err != nil {
//	    logger.Error("shutdown error", "error", err)
//	}
//
// The shutdown process:
//  1. Stops accepting new connections
//  2. Waits for active requests to complete (up to the shutdown timeout)
//  3. Forces connection closure if the timeout is exceeded
//
// In-flight evaluations survive even a forced closure: the engine
// detaches evaluation from request cancellation, so every started
// evaluation completes and lands in the decision record.
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - POST /v1/clearances - Evaluate one pre-dial compliance decision
//   - POST /v1/attempts - Record a completed contact attempt
//   - GET /v1/audit - List decision record entries with filters
//   - GET /v1/audit/export - Stream the decision record as JSON or CSV
//   - GET /healthz - Liveness probe
//   - GET /readyz - Readiness probe (checks backing stores)
//   - GET /metrics - Prometheus metrics
//   - GET /version - Build and version information
//
// Probe and metrics paths are configurable; the defaults are shown.
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to
// outermost):
//  1. Timeout: Enforces the per-request timeout
//  2. RequestID: Assigns or propagates the request ID
//  3. Logging: Logs request/response details
//  4. Recovery: Recovers from panics outside the engine boundary
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently
// from multiple goroutines.
package server
