package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// PrunerConfig contains configuration for the attempt log pruner.
type PrunerConfig struct {
	// RetentionDays is the number of days to retain attempts.
	// 0 means keep attempts forever (no pruning). The retention period
	// must stay above the frequency and cooldown windows or those rules
	// will undercount.
	RetentionDays int

	// Schedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	Schedule string
}

// DefaultPrunerConfig returns the default retention configuration.
func DefaultPrunerConfig() *PrunerConfig {
	return &PrunerConfig{
		RetentionDays: 90,
		Schedule:      "0 3 * * *",
	}
}

// Pruner enforces the retention policy on the attempt log. It runs the
// prune at scheduled intervals using cron syntax.
type Pruner struct {
	store   Store
	config  *PrunerConfig
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewPruner creates a new attempt log pruner.
func NewPruner(store Store, config *PrunerConfig) *Pruner {
	if config == nil {
		config = DefaultPrunerConfig()
	}

	return &Pruner{
		store:  store,
		config: config,
		cron:   cron.New(),
		logger: slog.Default().With("component", "history.pruner"),
	}
}

// Prune deletes attempts older than the retention period and returns the
// number of attempts deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, skipping prune")
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune attempts: %w", err)
	}

	if deleted > 0 {
		p.logger.Info("pruned attempts by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	} else {
		p.logger.Debug("no attempts pruned",
			"retention_days", p.config.RetentionDays,
		)
	}

	return deleted, nil
}

// Start begins scheduled pruning based on the cron expression.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
//
// If Schedule is empty, the pruner does nothing.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.Schedule == "" {
		p.logger.Info("prune schedule not configured, skipping pruner")
		return nil
	}

	// Validate cron expression
	_, err := cron.ParseStandard(p.config.Schedule)
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.config.Schedule, err)
	}

	// Add cron job
	_, err = p.cron.AddFunc(p.config.Schedule, func() {
		if _, err := p.Prune(ctx); err != nil {
			p.logger.Error("scheduled pruning failed",
				"error", err,
			)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	// Start cron scheduler
	p.cron.Start()
	p.running = true

	p.logger.Info("attempt log pruner started",
		"schedule", p.config.Schedule,
		"retention_days", p.config.RetentionDays,
	)

	// Wait for context cancellation in background
	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// Stop stops the pruner and waits for any running jobs to complete.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron != nil && p.running {
		ctx := p.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		p.running = false
		p.logger.Info("attempt log pruner stopped")
	}
}

// IsRunning returns true if the pruner is running.
func (p *Pruner) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.running
}

// NextRun returns the next scheduled pruning time.
func (p *Pruner) NextRun() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron == nil {
		return nil
	}

	entries := p.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
