package rules

import (
	"context"
	"fmt"

	"veritel-hq/dialguard/pkg/clearance"
)

// Warning codes raised by the jurisdiction rules.
const (
	CodeConsentNoticeRequired = "CONSENT_NOTICE_REQUIRED"
	CodeClaimAgeExpired       = "CLAIM_AGE_EXPIRED"
)

// ConsentNotice warns when the target's jurisdiction requires an enhanced
// disclosure before outbound contact, for example dual-party recording
// consent. The attempt proceeds; the agent script must include the
// notice.
type ConsentNotice struct {
	jurisdictions clearance.JurisdictionStore
}

// NewConsentNotice creates the consent notice rule.
func NewConsentNotice(jurisdictions clearance.JurisdictionStore) *ConsentNotice {
	return &ConsentNotice{jurisdictions: jurisdictions}
}

// Evaluate implements clearance.Evaluator.
func (r *ConsentNotice) Evaluate(ctx context.Context, attempt *clearance.AttemptContext) (clearance.Verdict, error) {
	if attempt.JurisdictionCode == "" {
		return clearance.Allow(), nil
	}

	rules, err := r.jurisdictions.Rules(ctx, attempt.JurisdictionCode)
	if err != nil {
		return clearance.Verdict{}, fmt.Errorf("fetching jurisdiction rules: %w", err)
	}
	if !rules.ConsentNoticeRequired {
		return clearance.Allow(), nil
	}

	reason := rules.ConsentNoticeText
	if reason == "" {
		reason = fmt.Sprintf("jurisdiction %s requires a consent notice before outbound contact", attempt.JurisdictionCode)
	}
	return clearance.Warn(CodeConsentNoticeRequired, reason), nil
}

// ClaimAge warns when the underlying claim is older than the
// jurisdiction's enforceability limit. Contact remains lawful, but suit
// threats are not, so agents need to know before dialing.
type ClaimAge struct {
	jurisdictions clearance.JurisdictionStore
}

// NewClaimAge creates the claim age rule.
func NewClaimAge(jurisdictions clearance.JurisdictionStore) *ClaimAge {
	return &ClaimAge{jurisdictions: jurisdictions}
}

// Evaluate implements clearance.Evaluator.
func (r *ClaimAge) Evaluate(ctx context.Context, attempt *clearance.AttemptContext) (clearance.Verdict, error) {
	// Without a claim date or jurisdiction there is nothing to assess.
	if attempt.JurisdictionCode == "" || attempt.ClaimOpenedAt.IsZero() {
		return clearance.Allow(), nil
	}

	rules, err := r.jurisdictions.Rules(ctx, attempt.JurisdictionCode)
	if err != nil {
		return clearance.Verdict{}, fmt.Errorf("fetching jurisdiction rules: %w", err)
	}
	if rules.ClaimEnforceabilityYears <= 0 {
		return clearance.Allow(), nil
	}

	expiry := attempt.ClaimOpenedAt.AddDate(rules.ClaimEnforceabilityYears, 0, 0)
	if attempt.OccurredAt.After(expiry) {
		return clearance.Warn(CodeClaimAgeExpired, fmt.Sprintf(
			"claim opened %s exceeds the %d-year enforceability limit in %s",
			attempt.ClaimOpenedAt.Format("2006-01-02"),
			rules.ClaimEnforceabilityYears,
			attempt.JurisdictionCode,
		)), nil
	}
	return clearance.Allow(), nil
}
