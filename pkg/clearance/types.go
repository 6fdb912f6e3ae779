package clearance

import (
	"context"
	"time"
)

// RuleID identifies a single compliance rule in the registry.
type RuleID string

// The full rule set, in the registry's default order. Permanent flags are
// checked first because they are cheapest and most decisive; the windowed
// history rules come last so that attempts which are already disallowed
// never touch the history store.
const (
	RulePermanentHold        RuleID = "permanent_hold"
	RuleAttorneyRepresented  RuleID = "attorney_represented"
	RuleBankruptcyActive     RuleID = "bankruptcy_active"
	RuleConsentRevoked       RuleID = "consent_revoked"
	RuleLegalHoldActive      RuleID = "legal_hold_active"
	RuleDoNotContact         RuleID = "do_not_contact"
	RuleTimeOfDay            RuleID = "time_of_day"
	RuleFrequencyCap         RuleID = "frequency_cap"
	RuleCooldownAfterContact RuleID = "cooldown_after_contact"

	RuleJurisdictionConsentNotice RuleID = "jurisdiction_consent_notice"
	RuleClaimAgeExpired           RuleID = "claim_age_expired"
)

// SystemErrorCode is the BlockedBy value reported when the evaluation itself
// failed. It is not a rule id; it marks a fail-closed result.
const SystemErrorCode = "system_error"

// RuleCategory classifies a rule as blocking or warning.
type RuleCategory string

const (
	// CategoryBlocking rules prevent the contact attempt when they fire.
	CategoryBlocking RuleCategory = "blocking"

	// CategoryWarning rules are recorded and surfaced but never prevent
	// the attempt. They are evaluated regardless of the blocking outcome.
	CategoryWarning RuleCategory = "warning"
)

// Evaluator is a single pure decision unit. It reads exactly one data source
// and returns a typed verdict. An adapter failure is returned as an error,
// never encoded into the verdict; the fail-closed boundary handles it.
type Evaluator interface {
	Evaluate(ctx context.Context, attempt *AttemptContext) (Verdict, error)
}

// Rule is one entry in the rule registry: an identifier, its category, and
// the evaluator that implements it.
type Rule struct {
	// ID is the unique rule identifier.
	ID RuleID

	// Category determines whether the rule can block the attempt.
	Category RuleCategory

	// Evaluator implements the rule's check.
	Evaluator Evaluator
}

// Request carries the raw inbound fields for one contact attempt.
// The engine validates and normalizes it into an AttemptContext.
type Request struct {
	// OrganizationID scopes the attempt to one organization.
	OrganizationID string `json:"organization_id" validate:"required,max=64"`

	// AccountID identifies the target account within the organization.
	AccountID string `json:"account_id" validate:"required,max=64"`

	// PhoneNumber is the target number in any common format. It is
	// normalized to E.164 before evaluation.
	PhoneNumber string `json:"phone_number" validate:"required"`

	// JurisdictionCode is the two-letter jurisdiction of the target
	// (e.g. a US state code). Optional; without it the jurisdiction
	// warning rules have nothing to check and pass.
	JurisdictionCode string `json:"jurisdiction_code,omitempty" validate:"omitempty,alpha,len=2"`

	// ClaimOpenedAt is when the underlying claim was opened. Optional;
	// required only for the claim-age warning rule to fire.
	ClaimOpenedAt time.Time `json:"claim_opened_at,omitzero"`
}

// AttemptContext is the immutable evaluation context for one contact
// attempt. It is built once per call to the engine and never mutated
// after construction.
type AttemptContext struct {
	// EvaluationID is a generated UUID linking the result and every
	// audit entry produced by this evaluation.
	EvaluationID string

	// OrganizationID scopes the attempt.
	OrganizationID string

	// AccountID identifies the target account.
	AccountID string

	// PhoneNumber is the normalized E.164 target number.
	PhoneNumber string

	// OccurredAt is the attempt timestamp, taken from the engine clock.
	OccurredAt time.Time

	// JurisdictionCode is the uppercased jurisdiction, if provided.
	JurisdictionCode string

	// ClaimOpenedAt is when the underlying claim was opened (zero if
	// unknown).
	ClaimOpenedAt time.Time
}

// Warning describes one warning-rule finding attached to a result.
type Warning struct {
	// Rule is the warning rule that fired.
	Rule RuleID `json:"rule"`

	// Code is the stable machine-readable warning code.
	Code string `json:"code"`

	// Reason is the human-readable explanation.
	Reason string `json:"reason"`
}

// EvaluationResult is the aggregate outcome of one evaluation. It is
// returned synchronously and not persisted by the engine; the audit trail
// is the durable record.
type EvaluationResult struct {
	// EvaluationID links this result to its audit entries.
	EvaluationID string `json:"evaluation_id"`

	// Allowed reports whether the contact attempt may proceed.
	Allowed bool `json:"allowed"`

	// BlockedBy names the rule that blocked the attempt, or
	// SystemErrorCode when the evaluation failed. Empty when allowed.
	BlockedBy string `json:"blocked_by,omitempty"`

	// BlockReason is the human-readable explanation for the block.
	BlockReason string `json:"block_reason,omitempty"`

	// Warnings lists the warning rules that fired, in registry order.
	Warnings []Warning `json:"warnings,omitempty"`

	// Evaluated lists the rules that were actually evaluated, in
	// evaluation order. It matches the audit entries one to one.
	Evaluated []RuleID `json:"evaluated"`

	// EvaluatedAt is when the evaluation completed.
	EvaluatedAt time.Time `json:"evaluated_at"`

	// Duration is the total evaluation time.
	Duration time.Duration `json:"-"`
}

// WarningRules returns just the rule ids of the warnings that fired.
func (r *EvaluationResult) WarningRules() []RuleID {
	if len(r.Warnings) == 0 {
		return nil
	}
	ids := make([]RuleID, len(r.Warnings))
	for i, w := range r.Warnings {
		ids[i] = w.Rule
	}
	return ids
}
