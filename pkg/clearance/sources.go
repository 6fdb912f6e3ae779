package clearance

import (
	"context"
	"time"
)

// AccountFlags holds the permanent and semi-permanent booleans attached to
// a target account. The engine never sets these; it only reads them.
type AccountFlags struct {
	// PermanentHold marks an unconditional communication ban, typically
	// an explicit cease request.
	PermanentHold bool

	// AttorneyRepresented marks the account as represented by counsel.
	AttorneyRepresented bool

	// BankruptcyActive marks an active bankruptcy proceeding.
	BankruptcyActive bool
}

// AccountFlagStore provides the account flags for a target.
type AccountFlagStore interface {
	Flags(ctx context.Context, orgID, accountID string) (AccountFlags, error)
}

// ConsentStatus is the current consent state of a target account.
type ConsentStatus string

const (
	// ConsentGranted means the target has granted contact consent.
	ConsentGranted ConsentStatus = "granted"

	// ConsentRevoked means the target has explicitly revoked consent.
	ConsentRevoked ConsentStatus = "revoked"

	// ConsentUnknown means no consent record exists. Unknown is not a
	// block on its own; only an explicit revocation blocks.
	ConsentUnknown ConsentStatus = "unknown"
)

// ConsentStore provides the current consent status for a target.
type ConsentStore interface {
	Status(ctx context.Context, orgID, accountID string) (ConsentStatus, error)
}

// LegalHoldStore reports whether an active dispute or litigation hold
// exists for a target.
type LegalHoldStore interface {
	ActiveHold(ctx context.Context, orgID, accountID string) (bool, error)
}

// DNCRegistry answers suppression lookups by phone number. Implementations
// consult both the org-scoped and the global suppression lists.
type DNCRegistry interface {
	Suppressed(ctx context.Context, orgID, phone string) (bool, error)
}

// HistoryStore provides windowed counts of prior contact attempts.
type HistoryStore interface {
	// CountAttempts returns the number of attempts to the target phone
	// within the window starting at since. When connectedOnly is true,
	// only attempts that were actually answered are counted.
	CountAttempts(ctx context.Context, orgID, phone string, since time.Time, connectedOnly bool) (int, error)
}

// TimezoneResolver maps a phone number to the target's local timezone for
// local-time computation. A resolution failure is a dependency error, not
// a silent fallback: guessing a timezone could permit a call outside the
// target's legal calling window.
type TimezoneResolver interface {
	Resolve(ctx context.Context, phone string) (*time.Location, error)
}

// JurisdictionRules holds the per-jurisdiction regulatory parameters
// consumed by the warning rules.
type JurisdictionRules struct {
	// ConsentNoticeRequired marks jurisdictions with enhanced disclosure
	// requirements (e.g. dual-party consent).
	ConsentNoticeRequired bool

	// ConsentNoticeText is the disclosure text to surface, if any.
	ConsentNoticeText string

	// ClaimEnforceabilityYears is the age in years beyond which a claim
	// is no longer judicially enforceable. Zero means no limit.
	ClaimEnforceabilityYears int
}

// JurisdictionStore provides the regulatory parameters for a jurisdiction
// code. An unknown code returns zero-valued rules, not an error.
type JurisdictionStore interface {
	Rules(ctx context.Context, code string) (JurisdictionRules, error)
}

// ReservationCounter reports the live allow-reservations for a target.
// The Coordinator implements it; the frequency rule consumes it so that
// consecutive allows are visible to each other before the caller records
// the attempt.
type ReservationCounter interface {
	Active(orgID, phone string) int
}
