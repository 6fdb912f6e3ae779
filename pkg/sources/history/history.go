// Package history stores the contact attempt log: one row per dial, with
// its disposition. The frequency and cooldown rules count against this
// log, so recording an attempt after every allowed dial is what makes
// those rules enforceable.
package history

import (
	"context"
	"fmt"
	"time"
)

// Dispositions describe how a contact attempt ended.
const (
	// DispositionConnected means a live conversation occurred.
	DispositionConnected = "connected"

	// DispositionNoAnswer means the call rang out.
	DispositionNoAnswer = "no_answer"

	// DispositionBusy means the line was busy.
	DispositionBusy = "busy"

	// DispositionVoicemail means the call reached voicemail.
	DispositionVoicemail = "voicemail"

	// DispositionFailed means the call could not be placed.
	DispositionFailed = "failed"
)

// ValidDisposition reports whether d is one of the defined dispositions.
func ValidDisposition(d string) bool {
	switch d {
	case DispositionConnected, DispositionNoAnswer, DispositionBusy, DispositionVoicemail, DispositionFailed:
		return true
	}
	return false
}

// Attempt is one recorded contact attempt.
type Attempt struct {
	// ID is assigned by the store on record.
	ID string `json:"id"`

	// EvaluationID links the attempt to the clearance that allowed it.
	EvaluationID string `json:"evaluation_id,omitempty"`

	OrganizationID string `json:"organization_id"`
	AccountID      string `json:"account_id,omitempty"`
	PhoneNumber    string `json:"phone_number"`

	// Disposition is how the attempt ended.
	Disposition string `json:"disposition"`

	// Connected is true when the disposition was a live conversation.
	// Stored separately because the cooldown rule filters on it.
	Connected bool `json:"connected"`

	// OccurredAt is when the dial happened.
	OccurredAt time.Time `json:"occurred_at"`
}

// Validate checks the attempt's required fields.
func (a *Attempt) Validate() error {
	if a.OrganizationID == "" {
		return fmt.Errorf("organization_id is required")
	}
	if a.PhoneNumber == "" {
		return fmt.Errorf("phone_number is required")
	}
	if !ValidDisposition(a.Disposition) {
		return fmt.Errorf("invalid disposition %q", a.Disposition)
	}
	return nil
}

// Store is the attempt log backend. CountAttempts satisfies the
// clearance engine's history source interface.
type Store interface {
	// Record persists an attempt, assigning its ID.
	Record(ctx context.Context, attempt *Attempt) error

	// CountAttempts returns the number of attempts to the target phone
	// since the given time. When connectedOnly is true, only attempts
	// with a live conversation are counted.
	CountAttempts(ctx context.Context, orgID, phone string, since time.Time, connectedOnly bool) (int, error)

	// Recent returns the most recent attempts for a target, newest
	// first.
	Recent(ctx context.Context, orgID, phone string, limit int) ([]*Attempt, error)

	// Prune deletes attempts older than the cutoff and returns how many
	// were removed.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
