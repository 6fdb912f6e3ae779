package handlers

import (
	"context"
	"time"

	"veritel-hq/dialguard/pkg/audit"
	"veritel-hq/dialguard/pkg/clearance"
	"veritel-hq/dialguard/pkg/sources/history"
)

// Engine is the decision engine surface the clearance handler depends on.
type Engine interface {
	Evaluate(ctx context.Context, req *clearance.Request) (*clearance.EvaluationResult, error)
}

// AttemptLog records completed contact attempts. Recording every allowed
// dial is what keeps the frequency and cooldown rules enforceable.
type AttemptLog interface {
	Record(ctx context.Context, attempt *history.Attempt) error
}

// ReservationLedger settles allow-reservations once the attempt they
// covered is recorded. Without settling, a recorded attempt and its
// reservation both count against the frequency cap until the
// reservation expires.
type ReservationLedger interface {
	Settle(orgID, phone string)
}

// DecisionLog reads the append-only decision record.
type DecisionLog interface {
	Query(ctx context.Context, query *audit.Query) ([]*audit.Entry, error)
	QueryStream(ctx context.Context, query *audit.Query) (<-chan *audit.Entry, <-chan error, error)
	Count(ctx context.Context, query *audit.Query) (int64, error)
}

// Metrics is the subset of the telemetry collector the handlers record
// to. A nil Metrics disables recording.
type Metrics interface {
	RecordEvaluation(organization, outcome string, duration time.Duration)
	RecordBlock(rule string)
	RecordWarning(rule string)
	RecordValidationFailure()
}
