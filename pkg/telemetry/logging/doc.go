// Package logging provides structured logging with phone number redaction.
//
// # Overview
//
// The logging package configures Go's standard log/slog package to provide:
//   - Structured logging with JSON and text formats
//   - Automatic phone number masking in messages and attributes
//   - Context-aware logging with request and evaluation IDs
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	// Create a logger
//	logger, err := logging.New(logging.Config{
//	    Level:               "info",
//	    Format:              "json",
//	    RedactPhoneNumbers:  true,
//	})
//
//	// Log structured data
//	logger.Info("clearance evaluated",
//	    "evaluation_id", "eval-123",
//	    "phone_number", "+15551234567",  // Automatically masked
//	    "duration_ms", 12,
//	)
//
//	// Enrich with request-scoped fields
//	ctx := logging.WithRequestID(ctx, "req-123")
//	logging.FromContext(ctx, logger).Info("processing")  // Includes request_id
//
// # Phone Number Redaction
//
// Redaction runs inside a slog.Handler, so it applies to every record the
// logger emits regardless of call site. Attributes under known phone keys
// (phone, phone_number, target, dialed_number) are masked outright, and any
// string value is scanned for NANP-shaped numbers:
//
//	+15551234567 → +*******4567
//
// The mask preserves the last four digits, matching the masking applied to
// stored audit entries, so log lines and audit records for the same call
// can still be correlated without exposing the full number.
package logging
