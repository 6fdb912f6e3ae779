package rules

import (
	"fmt"

	"veritel-hq/dialguard/pkg/clearance"
)

// Deps bundles the data sources the default rule set evaluates against.
// Every field except Reservations is required; Reservations is strongly
// recommended in any deployment where the same target can be evaluated
// concurrently.
type Deps struct {
	// Flags provides the account-level hold flags.
	Flags clearance.AccountFlagStore

	// Consent provides the current consent status per account.
	Consent clearance.ConsentStore

	// LegalHolds reports active dispute and litigation holds.
	LegalHolds clearance.LegalHoldStore

	// DNC answers suppression-list lookups by phone number.
	DNC clearance.DNCRegistry

	// History provides windowed counts of prior contact attempts.
	History clearance.HistoryStore

	// Timezones maps phone numbers to the target's local timezone.
	Timezones clearance.TimezoneResolver

	// Jurisdictions provides per-jurisdiction regulatory parameters.
	Jurisdictions clearance.JurisdictionStore

	// Reservations exposes in-flight allows to the frequency rule so
	// that back-to-back evaluations of the same target count each other
	// before either attempt is recorded. Usually the engine coordinator.
	Reservations clearance.ReservationCounter
}

// validate checks that every required data source is present.
func (d *Deps) validate() error {
	missing := func(name string) error {
		return fmt.Errorf("rule dependencies incomplete: %s is required", name)
	}

	switch {
	case d.Flags == nil:
		return missing("Flags")
	case d.Consent == nil:
		return missing("Consent")
	case d.LegalHolds == nil:
		return missing("LegalHolds")
	case d.DNC == nil:
		return missing("DNC")
	case d.History == nil:
		return missing("History")
	case d.Timezones == nil:
		return missing("Timezones")
	case d.Jurisdictions == nil:
		return missing("Jurisdictions")
	}
	return nil
}

// DefaultSet returns the standard rule set in registry order, wired to
// the provided data sources. A nil config falls back to the engine
// defaults.
func DefaultSet(deps Deps, config *clearance.EngineConfig) ([]clearance.Rule, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if config == nil {
		config = clearance.DefaultEngineConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return []clearance.Rule{
		{
			ID:        clearance.RulePermanentHold,
			Category:  clearance.CategoryBlocking,
			Evaluator: NewPermanentHold(deps.Flags),
		},
		{
			ID:        clearance.RuleAttorneyRepresented,
			Category:  clearance.CategoryBlocking,
			Evaluator: NewAttorneyRepresented(deps.Flags),
		},
		{
			ID:        clearance.RuleBankruptcyActive,
			Category:  clearance.CategoryBlocking,
			Evaluator: NewBankruptcyActive(deps.Flags),
		},
		{
			ID:        clearance.RuleConsentRevoked,
			Category:  clearance.CategoryBlocking,
			Evaluator: NewConsentRevoked(deps.Consent),
		},
		{
			ID:        clearance.RuleLegalHoldActive,
			Category:  clearance.CategoryBlocking,
			Evaluator: NewLegalHold(deps.LegalHolds),
		},
		{
			ID:        clearance.RuleDoNotContact,
			Category:  clearance.CategoryBlocking,
			Evaluator: NewDoNotContact(deps.DNC),
		},
		{
			ID:        clearance.RuleTimeOfDay,
			Category:  clearance.CategoryBlocking,
			Evaluator: NewCallingWindow(deps.Timezones, config.CallingWindowStart, config.CallingWindowEnd),
		},
		{
			ID:        clearance.RuleFrequencyCap,
			Category:  clearance.CategoryBlocking,
			Evaluator: NewFrequencyCap(deps.History, deps.Reservations, config),
		},
		{
			ID:        clearance.RuleCooldownAfterContact,
			Category:  clearance.CategoryBlocking,
			Evaluator: NewCooldown(deps.History, config.CooldownWindow),
		},
		{
			ID:        clearance.RuleJurisdictionConsentNotice,
			Category:  clearance.CategoryWarning,
			Evaluator: NewConsentNotice(deps.Jurisdictions),
		},
		{
			ID:        clearance.RuleClaimAgeExpired,
			Category:  clearance.CategoryWarning,
			Evaluator: NewClaimAge(deps.Jurisdictions),
		},
	}, nil
}
