package metrics

import (
	"time"

	"veritel-hq/dialguard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// DecisionMetrics tracks metrics related to clearance evaluations.
//
// Metrics:
//   - veritel_dialguard_evaluations_total: Total evaluations by organization and outcome
//   - veritel_dialguard_evaluation_duration_seconds: Evaluation duration by outcome
//   - veritel_dialguard_blocks_total: Blocked attempts by rule
//   - veritel_dialguard_warnings_total: Warning findings by rule
//   - veritel_dialguard_validation_failures_total: Requests rejected before evaluation
type DecisionMetrics struct {
	// Total evaluations
	evaluationsTotal *prometheus.CounterVec

	// Evaluation duration histogram
	evaluationDuration *prometheus.HistogramVec

	// Blocked attempts by rule ("system_error" for fail-closed results)
	blocksTotal *prometheus.CounterVec

	// Warning findings by rule
	warningsTotal *prometheus.CounterVec

	// Requests rejected by validation
	validationFailures prometheus.Counter

	// Per-rule evaluation duration histogram
	ruleDuration *prometheus.HistogramVec

	// Coordinator lock wait histogram
	lockWait prometheus.Histogram

	// Coordinator lock acquisitions that timed out
	lockTimeouts prometheus.Counter
}

// NewDecisionMetrics creates and registers decision metrics with the provided registry.
func NewDecisionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DecisionMetrics {
	dm := &DecisionMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of clearance evaluations",
			},
			[]string{"organization", "outcome"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of clearance evaluations in seconds",
				// Most evaluations resolve in a few milliseconds; the
				// tail covers source timeouts and coordinator waits.
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
			},
			[]string{"outcome"},
		),

		blocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "blocks_total",
				Help:      "Total number of blocked contact attempts by rule",
			},
			[]string{"rule"},
		),

		warningsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "warnings_total",
				Help:      "Total number of warning findings by rule",
			},
			[]string{"rule"},
		),

		validationFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_failures_total",
				Help:      "Total number of requests rejected by validation before evaluation",
			},
		),

		ruleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_duration_seconds",
				Help:      "Duration of individual rule evaluations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 13), // 0.5ms to ~4s
			},
			[]string{"rule"},
		),

		lockWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "coordinator_lock_wait_seconds",
				Help:      "Time spent waiting for the per-target coordinator lock",
				// An uncontended acquire is sub-millisecond; the tail
				// runs up to the configured lock wait bound.
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to ~1.6s
			},
		),

		lockTimeouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "coordinator_lock_timeouts_total",
				Help:      "Total number of lock acquisitions that exceeded the wait bound",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		dm.evaluationsTotal,
		dm.evaluationDuration,
		dm.blocksTotal,
		dm.warningsTotal,
		dm.validationFailures,
		dm.ruleDuration,
		dm.lockWait,
		dm.lockTimeouts,
	)

	return dm
}

// RecordEvaluation records a completed evaluation.
//
// Parameters:
//   - organization: Organization identifier
//   - outcome: Evaluation outcome ("allow", "allow_with_warnings", "block", "error")
//   - duration: Total evaluation duration
func (dm *DecisionMetrics) RecordEvaluation(organization, outcome string, duration time.Duration) {
	dm.evaluationsTotal.WithLabelValues(organization, outcome).Inc()
	dm.evaluationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordBlock records a blocked attempt.
//
// Parameters:
//   - rule: Rule that blocked the attempt
func (dm *DecisionMetrics) RecordBlock(rule string) {
	dm.blocksTotal.WithLabelValues(rule).Inc()
}

// RecordWarning records a warning-rule finding.
//
// Parameters:
//   - rule: Warning rule that fired
func (dm *DecisionMetrics) RecordWarning(rule string) {
	dm.warningsTotal.WithLabelValues(rule).Inc()
}

// RecordValidationFailure records a request rejected before evaluation.
func (dm *DecisionMetrics) RecordValidationFailure() {
	dm.validationFailures.Inc()
}

// RecordRuleDuration records how long one rule took to evaluate.
//
// Parameters:
//   - rule: Rule identifier
//   - duration: Time spent in the rule's evaluator, including its
//     data source call
func (dm *DecisionMetrics) RecordRuleDuration(rule string, duration time.Duration) {
	dm.ruleDuration.WithLabelValues(rule).Observe(duration.Seconds())
}

// RecordLockWait records the time one evaluation spent waiting for the
// per-target coordinator lock.
func (dm *DecisionMetrics) RecordLockWait(wait time.Duration) {
	dm.lockWait.Observe(wait.Seconds())
}

// RecordLockTimeout records a lock acquisition that exceeded the bound.
func (dm *DecisionMetrics) RecordLockTimeout() {
	dm.lockTimeouts.Inc()
}
