package audit

import (
	"context"
	"io"
	"time"
)

// Outcome is the recorded result of evaluating one rule.
type Outcome string

const (
	// OutcomePass records that the rule found no objection.
	OutcomePass Outcome = "pass"

	// OutcomeBlock records that the rule blocked the attempt.
	OutcomeBlock Outcome = "block"

	// OutcomeWarn records that the rule raised an advisory warning.
	OutcomeWarn Outcome = "warn"

	// OutcomeSystemError records that the evaluation failed closed while
	// this rule was executing.
	OutcomeSystemError Outcome = "system_error"
)

// Valid reports whether o is one of the defined outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePass, OutcomeBlock, OutcomeWarn, OutcomeSystemError:
		return true
	}
	return false
}

// Entry is one immutable line of the decision record: a single rule
// evaluated for a single contact attempt. Entries are append-only; there
// is deliberately no way to update or delete one through this package.
type Entry struct {
	// Identity
	ID       string `json:"id"`       // UUID v4, assigned by the recorder
	Sequence int64  `json:"sequence"` // Monotonic position, assigned by storage

	// Evaluation linkage
	EvaluationID   string `json:"evaluation_id"`
	OrganizationID string `json:"organization_id"`

	// Decision
	Rule    string  `json:"rule"`             // Rule identifier
	Outcome Outcome `json:"outcome"`          // pass, block, warn, system_error
	Code    string  `json:"code,omitempty"`   // Machine-readable reason code
	Reason  string  `json:"reason,omitempty"` // Human-readable reason

	// Target
	MaskedPhone string `json:"masked_phone"` // All but the last four digits masked

	// Timing
	OccurredAt time.Time `json:"occurred_at"`

	// Tamper evidence
	ChainHash string `json:"chain_hash,omitempty"` // SHA-256 over the previous hash and this entry
}

// Query defines filter parameters for reading the decision record.
type Query struct {
	// Time range
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	EvaluationID   string  `json:"evaluation_id,omitempty"`
	OrganizationID string  `json:"organization_id,omitempty"`
	Rule           string  `json:"rule,omitempty"`
	Outcome        Outcome `json:"outcome,omitempty"`
	Code           string  `json:"code,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Sorting. Entries sort by sequence; only the direction is
	// configurable.
	SortOrder string `json:"sort_order,omitempty"` // "asc" (default) or "desc"
}

// Writer is the minimal sink the decision engine needs: durably append
// one entry. The full Storage interface satisfies it.
type Writer interface {
	Append(ctx context.Context, entry *Entry) error
}

// Storage defines the interface for decision record backends.
// Implementations must be thread-safe and must preserve insertion order
// through the Sequence field.
type Storage interface {
	// Append persists an entry and assigns its sequence number.
	// Returns an error if the entry cannot be durably written.
	Append(ctx context.Context, entry *Entry) error

	// Query retrieves entries matching the filters.
	// Returns an empty slice if no entries match.
	Query(ctx context.Context, query *Query) ([]*Entry, error)

	// QueryStream returns a channel of entries for memory-efficient
	// streaming of large result sets.
	//
	// The channels are closed when the query completes or errors.
	// Callers should read from both channels until they are closed.
	QueryStream(ctx context.Context, query *Query) (<-chan *Entry, <-chan error, error)

	// Count returns the number of entries matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// LastChainHash returns the chain hash of the most recent entry, or
	// an empty string when the record is empty.
	LastChainHash(ctx context.Context) (string, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Exporter writes decision record entries to an output stream in a
// specific format.
type Exporter interface {
	Export(ctx context.Context, entries []*Entry, w io.Writer) error
}

// StreamExporter writes entries as they arrive on a channel, pairing with
// Storage.QueryStream so large extracts never buffer the whole record.
type StreamExporter interface {
	Exporter
	ExportStream(ctx context.Context, entries <-chan *Entry, w io.Writer) error
}
