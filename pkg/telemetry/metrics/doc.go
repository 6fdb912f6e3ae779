// Package metrics provides Prometheus metrics collection for DialGuard.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring the
// clearance decision path, the audit trail, and the engine's data sources.
// All metrics share the configured namespace and subsystem (by default
// "veritel" and "dialguard").
//
// # Metrics
//
// Decision metrics:
//   - veritel_dialguard_evaluations_total{organization, outcome}
//   - veritel_dialguard_evaluation_duration_seconds{outcome}
//   - veritel_dialguard_blocks_total{rule}
//   - veritel_dialguard_warnings_total{rule}
//   - veritel_dialguard_validation_failures_total
//
// Audit metrics:
//   - veritel_dialguard_audit_appends_total{status}
//   - veritel_dialguard_audit_append_duration_seconds
//
// Source metrics:
//   - veritel_dialguard_dnc_refreshes_total{status}
//   - veritel_dialguard_dnc_entries
//   - veritel_dialguard_dnc_snapshot_timestamp_seconds
//   - veritel_dialguard_reservations_active
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	// After an evaluation
//	collector.RecordEvaluation(
//	    req.OrganizationID,
//	    metrics.OutcomeLabel(result.Allowed, result.BlockedBy, len(result.Warnings)),
//	    result.Duration,
//	)
//
//	// Expose the endpoint
//	mux.Handle("/metrics", collector.Handler())
//
// # Cardinality
//
// The organization label is the only unbounded label. The collector caps
// the number of unique label sets and aggregates the overflow into an
// "other" organization, so a flood of one-off organization IDs cannot
// grow the scrape without bound. Rule and outcome labels come from fixed
// registries and stay small.
package metrics
