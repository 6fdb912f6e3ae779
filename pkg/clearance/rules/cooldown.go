package rules

import (
	"context"
	"fmt"
	"time"

	"veritel-hq/dialguard/pkg/clearance"
)

// CodeCooldownActive is the block code raised by the cooldown rule.
const CodeCooldownActive = "COOLDOWN_ACTIVE"

// Cooldown blocks a target who was actually reached within the cooldown
// window. A connected conversation satisfies the contact purpose; calling
// again days later is harassment, not collection.
//
// Only connected attempts start a cooldown. Unanswered attempts are
// governed by the frequency cap instead.
type Cooldown struct {
	history clearance.HistoryStore
	window  time.Duration
}

// NewCooldown creates the cooldown rule.
func NewCooldown(history clearance.HistoryStore, window time.Duration) *Cooldown {
	return &Cooldown{
		history: history,
		window:  window,
	}
}

// Evaluate implements clearance.Evaluator.
func (r *Cooldown) Evaluate(ctx context.Context, attempt *clearance.AttemptContext) (clearance.Verdict, error) {
	since := attempt.OccurredAt.Add(-r.window)

	connected, err := r.history.CountAttempts(ctx, attempt.OrganizationID, attempt.PhoneNumber, since, true)
	if err != nil {
		return clearance.Verdict{}, fmt.Errorf("counting connected contacts: %w", err)
	}
	if connected > 0 {
		return clearance.Block(CodeCooldownActive, fmt.Sprintf(
			"target was reached within the last %s", formatWindow(r.window),
		)), nil
	}
	return clearance.Allow(), nil
}

// formatWindow renders a cooldown window in days when it divides evenly,
// falling back to Duration formatting otherwise.
func formatWindow(d time.Duration) string {
	const day = 24 * time.Hour
	if d >= day && d%day == 0 {
		days := int(d / day)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	return d.String()
}
