package rules

import (
	"context"
	"fmt"

	"veritel-hq/dialguard/pkg/clearance"
)

// CodeFrequencyCapReached is the block code raised by the frequency rule.
const CodeFrequencyCapReached = "FREQUENCY_CAP_REACHED"

// FrequencyCap blocks an attempt once the target has already been
// attempted cap times inside the trailing window. Recorded attempts and
// live reservations both count: a reservation is an allow the engine has
// handed out for this target whose attempt has not been recorded yet, and
// ignoring it would let two back-to-back evaluations each see cap-1.
//
// The engine runs this rule under the per-target lock, so the count it
// sees cannot change between the read and the reservation of its own
// allow.
type FrequencyCap struct {
	history      clearance.HistoryStore
	reservations clearance.ReservationCounter
	config       *clearance.EngineConfig
}

// NewFrequencyCap creates the frequency rule. reservations may be nil
// when concurrent evaluation of the same target is impossible.
func NewFrequencyCap(history clearance.HistoryStore, reservations clearance.ReservationCounter, config *clearance.EngineConfig) *FrequencyCap {
	return &FrequencyCap{
		history:      history,
		reservations: reservations,
		config:       config,
	}
}

// Evaluate implements clearance.Evaluator.
func (r *FrequencyCap) Evaluate(ctx context.Context, attempt *clearance.AttemptContext) (clearance.Verdict, error) {
	since := attempt.OccurredAt.Add(-r.config.FrequencyWindow)

	recorded, err := r.history.CountAttempts(ctx, attempt.OrganizationID, attempt.PhoneNumber, since, false)
	if err != nil {
		return clearance.Verdict{}, fmt.Errorf("counting contact attempts: %w", err)
	}

	reserved := 0
	if r.reservations != nil {
		reserved = r.reservations.Active(attempt.OrganizationID, attempt.PhoneNumber)
	}

	limit := r.config.CapFor(attempt.OrganizationID)
	total := recorded + reserved
	if total >= limit {
		return clearance.Block(CodeFrequencyCapReached, fmt.Sprintf(
			"%d attempts in the trailing window (cap %d)", total, limit,
		)), nil
	}
	return clearance.Allow(), nil
}
