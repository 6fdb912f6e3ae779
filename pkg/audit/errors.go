package audit

import "fmt"

// StorageError reports a failed operation against a decision record
// store.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite", "memory", etc.)
	Operation string // Operation that failed ("append", "query", "count", etc.)
	Cause     error  // Underlying error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// QueryError reports a query that could not be validated or executed.
type QueryError struct {
	Query *Query // Query that failed
	Cause error  // Underlying error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("audit query error: %v", e.Cause)
}

func (e *QueryError) Unwrap() error { return e.Cause }

// NewQueryError creates a new QueryError.
func NewQueryError(query *Query, cause error) *QueryError {
	return &QueryError{
		Query: query,
		Cause: cause,
	}
}

// RecorderError represents an error while appending to the decision
// record.
type RecorderError struct {
	EntryID string // Entry ID, if one was assigned
	Cause   error  // Underlying error
}

func (e *RecorderError) Error() string {
	if e.EntryID != "" {
		return fmt.Sprintf("audit recorder error [entry_id=%s]: %v", e.EntryID, e.Cause)
	}
	return fmt.Sprintf("audit recorder error: %v", e.Cause)
}

func (e *RecorderError) Unwrap() error { return e.Cause }

// NewRecorderError creates a new RecorderError.
func NewRecorderError(entryID string, cause error) *RecorderError {
	return &RecorderError{
		EntryID: entryID,
		Cause:   cause,
	}
}

// ChainMismatchError reports a break in the tamper-evidence chain: an
// entry whose stored chain hash does not match the hash recomputed from
// its content and predecessor.
type ChainMismatchError struct {
	Index    int    // Position within the verified slice
	Sequence int64  // Sequence number of the mismatched entry
	Stored   string // Hash stored with the entry
	Computed string // Hash recomputed during verification
}

func (e *ChainMismatchError) Error() string {
	return fmt.Sprintf("audit chain mismatch at sequence %d: stored %s, computed %s", e.Sequence, e.Stored, e.Computed)
}

// ExportError reports a failed decision record export.
type ExportError struct {
	Format     string // Export format ("json", "csv")
	EntryCount int    // Number of entries being exported
	Cause      error  // Underlying error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("audit export error [format=%s, entry_count=%d]: %v", e.Format, e.EntryCount, e.Cause)
}

func (e *ExportError) Unwrap() error { return e.Cause }

// NewExportError creates a new ExportError.
func NewExportError(format string, entryCount int, cause error) *ExportError {
	return &ExportError{
		Format:     format,
		EntryCount: entryCount,
		Cause:      cause,
	}
}
