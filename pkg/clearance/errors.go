package clearance

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common sentinel errors
var (
	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrEmptyRegistry indicates a registry with no rules.
	ErrEmptyRegistry = errors.New("rule registry is empty")

	// ErrNotStarted indicates the evaluation was cancelled before it
	// began; nothing was evaluated and nothing was audited.
	ErrNotStarted = errors.New("evaluation cancelled before start")
)

// FieldError describes one invalid request field.
type FieldError struct {
	// Field is the request field name.
	Field string `json:"field"`

	// Code is the stable machine-readable error code.
	Code string `json:"code"`

	// Message is the human-readable explanation.
	Message string `json:"message"`
}

// ValidationError indicates a malformed or incomplete request. It is
// returned to the caller before evaluation begins and is distinct from a
// compliance verdict: a rejected request is not a legal determination.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		f := e.Fields[0]
		return fmt.Sprintf("invalid request: %s: %s", f.Field, f.Message)
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field
	}
	return fmt.Sprintf("invalid request: %d invalid fields: %s", len(e.Fields), strings.Join(parts, ", "))
}

// NewValidationError creates a ValidationError from field errors.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// DependencyError indicates a data-source adapter returned an error or
// timed out while a rule was being evaluated.
type DependencyError struct {
	// Rule is the rule whose adapter call failed.
	Rule RuleID

	// Source names the failing dependency ("audit" for the audit sink,
	// empty when the rule's own data source failed).
	Source string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *DependencyError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("rule %s: %s dependency failed: %v", e.Rule, e.Source, e.Cause)
	}
	return fmt.Sprintf("rule %s: dependency failed: %v", e.Rule, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DependencyError) Unwrap() error {
	return e.Cause
}

// NewDependencyError creates a DependencyError for a rule's data source.
func NewDependencyError(rule RuleID, cause error) *DependencyError {
	return &DependencyError{Rule: rule, Cause: cause}
}

// LockTimeoutError indicates the Coordinator could not serialize the
// window-sensitive rules within the configured wait bound.
type LockTimeoutError struct {
	// OrganizationID and Phone identify the contended target.
	OrganizationID string
	Phone          string

	// Wait is the configured bound that expired.
	Wait time.Duration
}

// Error implements the error interface.
func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("coordinator lock not acquired within %v for org %s", e.Wait, e.OrganizationID)
}

// SystemError indicates an unexpected failure, including recovered panics.
// It is always converted into a fail-closed block.
type SystemError struct {
	// Rule is the rule that was executing when the failure occurred
	// (empty if none was).
	Rule RuleID

	// Message describes the failure.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *SystemError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("system error during rule %s: %s: %v", e.Rule, e.Message, e.Cause)
	}
	return fmt.Sprintf("system error during rule %s: %s", e.Rule, e.Message)
}

// Unwrap returns the underlying cause.
func (e *SystemError) Unwrap() error {
	return e.Cause
}
