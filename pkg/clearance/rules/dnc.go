package rules

import (
	"context"
	"fmt"

	"veritel-hq/dialguard/pkg/clearance"
)

// CodeDoNotContact is the block code raised by the suppression rule.
const CodeDoNotContact = "DO_NOT_CONTACT"

// DoNotContact blocks numbers found on the organization's suppression
// list or the shared global list. The registry implementation decides how
// the two lists are stored and refreshed; this rule only asks the
// question.
type DoNotContact struct {
	registry clearance.DNCRegistry
}

// NewDoNotContact creates the suppression rule.
func NewDoNotContact(registry clearance.DNCRegistry) *DoNotContact {
	return &DoNotContact{registry: registry}
}

// Evaluate implements clearance.Evaluator.
func (r *DoNotContact) Evaluate(ctx context.Context, attempt *clearance.AttemptContext) (clearance.Verdict, error) {
	suppressed, err := r.registry.Suppressed(ctx, attempt.OrganizationID, attempt.PhoneNumber)
	if err != nil {
		return clearance.Verdict{}, fmt.Errorf("checking suppression lists: %w", err)
	}
	if suppressed {
		return clearance.Block(CodeDoNotContact, "number is on a do-not-contact list"), nil
	}
	return clearance.Allow(), nil
}
