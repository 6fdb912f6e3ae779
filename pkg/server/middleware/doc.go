// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements middleware functions that handle common
// functionality across all HTTP requests: request ID propagation,
// structured request logging, panic recovery, and timeout enforcement.
//
// # Middleware Chain
//
// Middleware functions are chained in a specific order:
//
//	handler = Recovery(Logging(RequestID(mux)))
//
// Order (innermost to outermost):
//  1. Timeout: Enforce per-request timeout (per-route, decision endpoints only)
//  2. RequestID: Generate and propagate request ID
//  3. Logging: Log request/response details
//  4. Recovery: Recover from panics
//
// Timeout wraps individual routes rather than the whole mux because it
// buffers responses; the streaming export endpoint is mounted outside it.
//
// # Request ID
//
// RequestIDMiddleware reuses a client-supplied X-Request-ID header or
// generates a 32-character hex ID. The ID is stored in the request
// context, pushed into the logging context so every log record carries
// it, and echoed back in the response headers. Dialers that pass their
// own correlation ID through get end-to-end traceability from the dial
// attempt to the decision record.
//
// # Logging
//
// LoggingMiddleware records one structured completion line per request
// with method, path, status, and latency. Responses with status >= 500
// log at error level and >= 400 at warn level. Request bodies are never
// logged; phone numbers that reach log attributes are masked by the
// redacting log handler.
//
// # Recovery
//
// RecoveryMiddleware catches panics outside the decision engine boundary
// and converts them to HTTP 500 errors in the standard envelope:
//
//	{
//	  "error": {
//	    "message": "An internal error occurred. Please try again later.",
//	    "type": "server_error",
//	    "code": "internal_error"
//	  }
//	}
//
// The panic stack trace is logged but not exposed to clients.
//
// # Timeout
//
// TimeoutMiddleware enforces a per-request timeout using
// context.WithTimeout. If the timeout is exceeded the client receives a
// 504 Gateway Timeout. The inner handler writes into a buffer, so a
// handler that finishes after the deadline cannot corrupt the 504
// already on the wire, and a panic on the handler goroutine is re-raised
// on the request goroutine where the recovery middleware catches it.
// The decision engine detaches its evaluation from request cancellation,
// so a timed-out clearance request still produces a complete evaluation
// and audit trail server-side.
//
// # Thread Safety
//
// All middleware functions are thread-safe and can be called concurrently
// from multiple goroutines.
package middleware
