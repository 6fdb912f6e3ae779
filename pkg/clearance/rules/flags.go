package rules

import (
	"context"
	"fmt"

	"veritel-hq/dialguard/pkg/clearance"
)

// Block codes raised by the account flag rules.
const (
	CodePermanentHold       = "PERMANENT_HOLD"
	CodeAttorneyRepresented = "ATTORNEY_REPRESENTED"
	CodeBankruptcyActive    = "BANKRUPTCY_ACTIVE"
)

// PermanentHold blocks any account carrying an unconditional contact ban,
// typically recorded after an explicit cease-communication request.
type PermanentHold struct {
	flags clearance.AccountFlagStore
}

// NewPermanentHold creates the permanent hold rule.
func NewPermanentHold(flags clearance.AccountFlagStore) *PermanentHold {
	return &PermanentHold{flags: flags}
}

// Evaluate implements clearance.Evaluator.
func (r *PermanentHold) Evaluate(ctx context.Context, attempt *clearance.AttemptContext) (clearance.Verdict, error) {
	flags, err := r.flags.Flags(ctx, attempt.OrganizationID, attempt.AccountID)
	if err != nil {
		return clearance.Verdict{}, fmt.Errorf("fetching account flags: %w", err)
	}
	if flags.PermanentHold {
		return clearance.Block(CodePermanentHold, "account is under a permanent contact hold"), nil
	}
	return clearance.Allow(), nil
}

// AttorneyRepresented blocks accounts represented by counsel; all
// communication must go through the attorney.
type AttorneyRepresented struct {
	flags clearance.AccountFlagStore
}

// NewAttorneyRepresented creates the attorney representation rule.
func NewAttorneyRepresented(flags clearance.AccountFlagStore) *AttorneyRepresented {
	return &AttorneyRepresented{flags: flags}
}

// Evaluate implements clearance.Evaluator.
func (r *AttorneyRepresented) Evaluate(ctx context.Context, attempt *clearance.AttemptContext) (clearance.Verdict, error) {
	flags, err := r.flags.Flags(ctx, attempt.OrganizationID, attempt.AccountID)
	if err != nil {
		return clearance.Verdict{}, fmt.Errorf("fetching account flags: %w", err)
	}
	if flags.AttorneyRepresented {
		return clearance.Block(CodeAttorneyRepresented, "account is represented by an attorney"), nil
	}
	return clearance.Allow(), nil
}

// BankruptcyActive blocks accounts in an active bankruptcy proceeding,
// where collection contact is stayed.
type BankruptcyActive struct {
	flags clearance.AccountFlagStore
}

// NewBankruptcyActive creates the bankruptcy rule.
func NewBankruptcyActive(flags clearance.AccountFlagStore) *BankruptcyActive {
	return &BankruptcyActive{flags: flags}
}

// Evaluate implements clearance.Evaluator.
func (r *BankruptcyActive) Evaluate(ctx context.Context, attempt *clearance.AttemptContext) (clearance.Verdict, error) {
	flags, err := r.flags.Flags(ctx, attempt.OrganizationID, attempt.AccountID)
	if err != nil {
		return clearance.Verdict{}, fmt.Errorf("fetching account flags: %w", err)
	}
	if flags.BankruptcyActive {
		return clearance.Block(CodeBankruptcyActive, "account has an active bankruptcy proceeding"), nil
	}
	return clearance.Allow(), nil
}
