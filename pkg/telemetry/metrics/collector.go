package metrics

import (
	"fmt"
	"sync"
	"time"

	"veritel-hq/dialguard/pkg/clearance"
	"veritel-hq/dialguard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in DialGuard.
// It manages metric registration and provides a unified interface for
// recording metrics across all components.
//
// The collector is designed for low overhead on the decision path:
//   - Pre-allocated metric instances
//   - Cardinality limits on the organization label
//   - Histogram buckets sized for a sub-second decision path with a
//     source-timeout tail
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Decision metrics
	decisionMetrics *DecisionMetrics

	// Audit trail metrics
	auditMetrics *AuditMetrics

	// Data source metrics
	sourceMetrics *SourceMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "veritel",
//		Subsystem: "dialguard",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = "veritel"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "dialguard"
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000), // Max 1K unique label sets
	}

	// Initialize metric subsystems
	c.decisionMetrics = NewDecisionMetrics(cfg, registry)
	c.auditMetrics = NewAuditMetrics(cfg, registry)
	c.sourceMetrics = NewSourceMetrics(cfg, registry)

	return c
}

// OutcomeLabel derives the outcome label for a completed evaluation.
// The labels are "allow", "allow_with_warnings", "block", and "error"
// for fail-closed results.
func OutcomeLabel(allowed bool, blockedBy string, warnings int) string {
	switch {
	case blockedBy == clearance.SystemErrorCode:
		return "error"
	case !allowed:
		return "block"
	case warnings > 0:
		return "allow_with_warnings"
	default:
		return "allow"
	}
}

// RecordEvaluation records metrics for a completed clearance evaluation.
//
// Parameters:
//   - organization: Organization identifier
//   - outcome: Evaluation outcome ("allow", "allow_with_warnings", "block", "error")
//   - duration: Total evaluation duration
//
// Example:
//
//	collector.RecordEvaluation(
//		"org-1",
//		metrics.OutcomeLabel(result.Allowed, result.BlockedBy, len(result.Warnings)),
//		result.Duration,
//	)
func (c *Collector) RecordEvaluation(organization, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	// Check cardinality limit
	labelSet := fmt.Sprintf("evaluation:%s:%s", organization, outcome)
	if !c.cardinalityLimiter.Allow(labelSet) {
		// Aggregate into "other" to prevent cardinality explosion
		organization = "other"
	}

	c.decisionMetrics.RecordEvaluation(organization, outcome, duration)
}

// RecordBlock records a blocked attempt.
//
// Parameters:
//   - rule: Rule that blocked the attempt, or "system_error" for
//     fail-closed results
func (c *Collector) RecordBlock(rule string) {
	if !c.config.Enabled {
		return
	}

	c.decisionMetrics.RecordBlock(rule)
}

// RecordWarning records a warning-rule finding.
//
// Parameters:
//   - rule: Warning rule that fired
func (c *Collector) RecordWarning(rule string) {
	if !c.config.Enabled {
		return
	}

	c.decisionMetrics.RecordWarning(rule)
}

// RecordValidationFailure records a request rejected by validation before
// any rule was evaluated.
func (c *Collector) RecordValidationFailure() {
	if !c.config.Enabled {
		return
	}

	c.decisionMetrics.RecordValidationFailure()
}

// RecordRuleDuration records how long one rule took to evaluate.
//
// Parameters:
//   - rule: Rule identifier
//   - duration: Time spent in the rule's evaluator
func (c *Collector) RecordRuleDuration(rule string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.decisionMetrics.RecordRuleDuration(rule, duration)
}

// RecordLockWait records the time one evaluation spent waiting for the
// per-target coordinator lock.
func (c *Collector) RecordLockWait(wait time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.decisionMetrics.RecordLockWait(wait)
}

// RecordLockTimeout records a lock acquisition that exceeded the
// configured wait bound.
func (c *Collector) RecordLockTimeout() {
	if !c.config.Enabled {
		return
	}

	c.decisionMetrics.RecordLockTimeout()
}

// RecordAuditAppend records an append to the audit trail.
//
// Parameters:
//   - status: Append status ("ok", "error")
//   - duration: Time taken to make the entry durable
func (c *Collector) RecordAuditAppend(status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.auditMetrics.RecordAppend(status, duration)
}

// RecordDNCRefresh records a suppression snapshot refresh.
//
// Parameters:
//   - status: Refresh status ("ok", "error")
func (c *Collector) RecordDNCRefresh(status string) {
	if !c.config.Enabled {
		return
	}

	c.sourceMetrics.RecordDNCRefresh(status)
}

// UpdateDNCSnapshot updates the gauges describing the live suppression
// snapshot.
//
// Parameters:
//   - entries: Number of suppressed numbers in the snapshot
//   - loadedAt: When the snapshot was loaded
func (c *Collector) UpdateDNCSnapshot(entries int, loadedAt time.Time) {
	if !c.config.Enabled {
		return
	}

	c.sourceMetrics.UpdateDNCSnapshot(entries, loadedAt)
}

// RegisterReservationsGauge registers a gauge that reports the number of
// reservations currently held in the coordinator's ledger. The size
// function is called at scrape time, so the gauge is always current.
//
// Example:
//
//	collector.RegisterReservationsGauge(func() int {
//		return engine.Coordinator().LedgerSize()
//	})
func (c *Collector) RegisterReservationsGauge(size func() int) {
	if !c.config.Enabled {
		return
	}

	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "reservations_active",
			Help:      "Number of reservations currently held in the coordinator ledger",
		},
		func() float64 {
			return float64(size())
		},
	))
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
