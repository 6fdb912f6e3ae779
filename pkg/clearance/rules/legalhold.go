package rules

import (
	"context"
	"fmt"

	"veritel-hq/dialguard/pkg/clearance"
)

// CodeLegalHoldActive is the block code raised by the legal hold rule.
const CodeLegalHoldActive = "LEGAL_HOLD_ACTIVE"

// LegalHold blocks accounts with an active dispute or litigation hold.
type LegalHold struct {
	holds clearance.LegalHoldStore
}

// NewLegalHold creates the legal hold rule.
func NewLegalHold(holds clearance.LegalHoldStore) *LegalHold {
	return &LegalHold{holds: holds}
}

// Evaluate implements clearance.Evaluator.
func (r *LegalHold) Evaluate(ctx context.Context, attempt *clearance.AttemptContext) (clearance.Verdict, error) {
	active, err := r.holds.ActiveHold(ctx, attempt.OrganizationID, attempt.AccountID)
	if err != nil {
		return clearance.Verdict{}, fmt.Errorf("fetching legal hold status: %w", err)
	}
	if active {
		return clearance.Block(CodeLegalHoldActive, "account has an active legal hold"), nil
	}
	return clearance.Allow(), nil
}
