package dnc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RefresherConfig contains configuration for scheduled snapshot reloads.
type RefresherConfig struct {
	// SnapshotPath is the YAML snapshot file to reload from.
	SnapshotPath string

	// Schedule is a cron expression for reload timing, for example
	// "0 4 * * *" for daily at 4 AM. Empty disables scheduled reloads.
	Schedule string
}

// RefreshMetrics receives refresh outcomes and snapshot stats. A nil
// RefreshMetrics disables recording.
type RefreshMetrics interface {
	RecordDNCRefresh(status string)
	UpdateDNCSnapshot(entries int, loadedAt time.Time)
}

// Refresher reloads the suppression snapshot on a cron schedule. A
// failed reload logs and keeps the previous snapshot serving; suppression
// data going stale is recoverable, serving no data is not.
type Refresher struct {
	store   *Store
	config  *RefresherConfig
	metrics RefreshMetrics
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewRefresher creates a snapshot refresher for the store.
func NewRefresher(store *Store, config *RefresherConfig) *Refresher {
	return &Refresher{
		store:  store,
		config: config,
		cron:   cron.New(),
		logger: slog.Default().With("component", "sources.dnc.refresher"),
	}
}

// SetMetrics attaches a metrics sink for refresh outcomes. Must be called
// before Start.
func (r *Refresher) SetMetrics(m RefreshMetrics) {
	r.metrics = m
}

// Start loads the snapshot once immediately, then begins scheduled
// reloads. If no schedule is configured, only the initial load runs.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Initial load is mandatory: starting with an empty registry would
	// clear every number until the first scheduled reload.
	if err := r.reload(ctx); err != nil {
		return fmt.Errorf("initial suppression snapshot load: %w", err)
	}

	if r.config.Schedule == "" {
		r.logger.Info("suppression refresh schedule not configured, skipping scheduler")
		return nil
	}

	// Validate cron expression
	if _, err := cron.ParseStandard(r.config.Schedule); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", r.config.Schedule, err)
	}

	_, err := r.cron.AddFunc(r.config.Schedule, func() {
		if err := r.reload(ctx); err != nil {
			r.logger.Error("scheduled suppression reload failed, keeping previous snapshot",
				"path", r.config.SnapshotPath,
				"error", err,
			)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule suppression reload: %w", err)
	}

	r.cron.Start()
	r.running = true

	r.logger.Info("suppression refresher started",
		"schedule", r.config.Schedule,
		"path", r.config.SnapshotPath,
	)

	// Wait for context cancellation in background
	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// reload loads the snapshot file and replaces the registry contents.
func (r *Refresher) reload(ctx context.Context) error {
	snapshot, err := LoadSnapshotFile(r.config.SnapshotPath)
	if err == nil {
		err = r.store.ReplaceAll(ctx, snapshot)
	}

	if r.metrics != nil {
		if err != nil {
			r.metrics.RecordDNCRefresh("error")
		} else {
			r.metrics.RecordDNCRefresh("ok")
			stats := r.store.Stats()
			r.metrics.UpdateDNCSnapshot(stats.GlobalCount+stats.OrgCount, stats.UpdatedAt)
		}
	}

	return err
}

// Stop stops the scheduler and waits for any running reload to complete.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil && r.running {
		ctx := r.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		r.running = false
		r.logger.Info("suppression refresher stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.running
}

// NextRun returns the next scheduled reload time.
func (r *Refresher) NextRun() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron == nil {
		return nil
	}

	entries := r.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
