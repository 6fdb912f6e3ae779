package metrics

import (
	"time"

	"veritel-hq/dialguard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SourceMetrics tracks metrics related to the engine's data sources.
//
// Metrics:
//   - veritel_dialguard_dnc_refreshes_total: Suppression snapshot refreshes by status
//   - veritel_dialguard_dnc_entries: Suppressed numbers in the live snapshot
//   - veritel_dialguard_dnc_snapshot_timestamp_seconds: When the live snapshot was loaded
//
// The snapshot timestamp gauge is the one to alert on: a stale snapshot
// means refreshes are failing and the suppression list is drifting from
// its upstream.
type SourceMetrics struct {
	// Snapshot refresh counts by status
	dncRefreshesTotal *prometheus.CounterVec

	// Entries in the live snapshot
	dncEntries prometheus.Gauge

	// Unix timestamp of the live snapshot load
	dncSnapshotTime prometheus.Gauge
}

// NewSourceMetrics creates and registers source metrics with the provided registry.
func NewSourceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SourceMetrics {
	sm := &SourceMetrics{
		dncRefreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dnc_refreshes_total",
				Help:      "Total number of suppression snapshot refreshes",
			},
			[]string{"status"},
		),

		dncEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dnc_entries",
				Help:      "Number of suppressed numbers in the live snapshot",
			},
		),

		dncSnapshotTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "dnc_snapshot_timestamp_seconds",
				Help:      "Unix timestamp of the live suppression snapshot load",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		sm.dncRefreshesTotal,
		sm.dncEntries,
		sm.dncSnapshotTime,
	)

	return sm
}

// RecordDNCRefresh records a suppression snapshot refresh.
//
// Parameters:
//   - status: Refresh status ("ok", "error")
func (sm *SourceMetrics) RecordDNCRefresh(status string) {
	sm.dncRefreshesTotal.WithLabelValues(status).Inc()
}

// UpdateDNCSnapshot updates the live snapshot gauges.
//
// Parameters:
//   - entries: Number of suppressed numbers in the snapshot
//   - loadedAt: When the snapshot was loaded
func (sm *SourceMetrics) UpdateDNCSnapshot(entries int, loadedAt time.Time) {
	sm.dncEntries.Set(float64(entries))
	sm.dncSnapshotTime.Set(float64(loadedAt.Unix()))
}
