// Package telemetry provides observability for DialGuard.
//
// # Overview
//
// The telemetry package implements structured logging, Prometheus metrics,
// and health check endpoints. It provides visibility into the decision
// path while keeping per-evaluation overhead low.
//
// # Components
//
//   - logging: Structured logging with phone number redaction
//   - metrics: Prometheus metrics collection
//   - health: Liveness and readiness probes
//
// # Usage
//
//	// Logger with phone masking
//	logger, err := logging.New(logging.Config{
//	    Level:              cfg.Telemetry.Logging.Level,
//	    Format:             cfg.Telemetry.Logging.Format,
//	    RedactPhoneNumbers: cfg.Telemetry.Logging.RedactPhoneNumbers,
//	})
//
//	// Decision metrics
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordEvaluation("org-1", "allow", result.Duration)
//
//	// Probes
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("audit", auditStore.Ping)
//
// # Phone Number Protection
//
// Log output never carries a raw target number. Redaction runs inside the
// slog handler and applies the same masking used for stored audit entries,
// keeping the last four digits so records remain correlatable:
//
//	+15551234567 → +*******4567
package telemetry
