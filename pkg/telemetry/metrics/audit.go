package metrics

import (
	"time"

	"veritel-hq/dialguard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AuditMetrics tracks metrics related to the audit trail.
//
// Metrics:
//   - veritel_dialguard_audit_appends_total: Audit entry appends by status
//   - veritel_dialguard_audit_append_duration_seconds: Append latency
//
// Append failures matter operationally: the engine fails an evaluation
// closed when it cannot make the audit entry durable, so a rising error
// count here shows up as blocked traffic.
type AuditMetrics struct {
	// Append counts by status
	appendsTotal *prometheus.CounterVec

	// Append latency histogram
	appendDuration prometheus.Histogram
}

// NewAuditMetrics creates and registers audit metrics with the provided registry.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		appendsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_appends_total",
				Help:      "Total number of audit entry appends",
			},
			[]string{"status"},
		),

		appendDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_append_duration_seconds",
				Help:      "Time taken to append an audit entry in seconds",
				// Appends are synchronous SQLite writes
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 100µs to ~200ms
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		am.appendsTotal,
		am.appendDuration,
	)

	return am
}

// RecordAppend records an audit entry append.
//
// Parameters:
//   - status: Append status ("ok", "error")
//   - duration: Time taken to make the entry durable
func (am *AuditMetrics) RecordAppend(status string, duration time.Duration) {
	am.appendsTotal.WithLabelValues(status).Inc()
	am.appendDuration.Observe(duration.Seconds())
}
