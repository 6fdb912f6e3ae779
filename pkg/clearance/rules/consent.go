package rules

import (
	"context"
	"fmt"

	"veritel-hq/dialguard/pkg/clearance"
)

// CodeConsentRevoked is the block code raised by the consent rule.
const CodeConsentRevoked = "CONSENT_REVOKED"

// ConsentRevoked blocks targets who have explicitly withdrawn contact
// consent. An absent consent record does not block; only an affirmative
// revocation does.
type ConsentRevoked struct {
	consent clearance.ConsentStore
}

// NewConsentRevoked creates the consent rule.
func NewConsentRevoked(consent clearance.ConsentStore) *ConsentRevoked {
	return &ConsentRevoked{consent: consent}
}

// Evaluate implements clearance.Evaluator.
func (r *ConsentRevoked) Evaluate(ctx context.Context, attempt *clearance.AttemptContext) (clearance.Verdict, error) {
	status, err := r.consent.Status(ctx, attempt.OrganizationID, attempt.AccountID)
	if err != nil {
		return clearance.Verdict{}, fmt.Errorf("fetching consent status: %w", err)
	}
	if status == clearance.ConsentRevoked {
		return clearance.Block(CodeConsentRevoked, "target has revoked contact consent"), nil
	}
	return clearance.Allow(), nil
}
