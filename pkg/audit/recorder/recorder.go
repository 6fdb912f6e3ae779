package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"veritel-hq/dialguard/pkg/audit"
)

// Config contains configuration for the decision record recorder.
type Config struct {
	// WriteTimeout is the timeout for writing an entry to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// Metrics receives append timings. A nil Metrics disables recording.
type Metrics interface {
	RecordAuditAppend(status string, duration time.Duration)
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder appends entries to the decision record. Writes are synchronous
// and serialized: the engine treats a rule as evaluated only once its
// entry is durably stored, so the recorder must not buffer, drop, or
// reorder entries. Serialization also keeps the tamper-evidence chain
// consistent with storage sequence order.
type Recorder struct {
	storage audit.Storage
	config  *Config
	logger  *slog.Logger

	mu       sync.Mutex
	metrics  Metrics
	lastHash string
	loaded   bool
}

// NewRecorder creates a recorder on top of the provided storage backend.
// The chain head is loaded from storage on the first append, so a
// recorder can be created before storage contains any entries.
func NewRecorder(storage audit.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.recorder"),
	}

	r.logger.Info("audit recorder initialized",
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// SetMetrics attaches a metrics sink for append timings.
func (r *Recorder) SetMetrics(m Metrics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = m
}

// Append assigns the entry its identity and chain hash, then writes it to
// storage. It returns only after the write has completed; a failed write
// leaves the chain head unchanged so the next append reuses it.
func (r *Recorder) Append(ctx context.Context, entry *audit.Entry) error {
	if entry == nil {
		return audit.NewRecorderError("", fmt.Errorf("entry cannot be nil"))
	}
	if !entry.Outcome.Valid() {
		return audit.NewRecorderError(entry.ID, fmt.Errorf("invalid outcome %q", entry.Outcome))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		last, err := r.storage.LastChainHash(ctx)
		if err != nil {
			return audit.NewRecorderError(entry.ID, fmt.Errorf("loading chain head: %w", err))
		}
		r.lastHash = last
		r.loaded = true
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.ChainHash = audit.ChainHash(r.lastHash, entry)

	writeCtx, cancel := context.WithTimeout(ctx, r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := r.storage.Append(writeCtx, entry)
	duration := time.Since(start)

	if r.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		r.metrics.RecordAuditAppend(status, duration)
	}

	if err != nil {
		r.logger.Error("failed to append audit entry",
			"entry_id", entry.ID,
			"evaluation_id", entry.EvaluationID,
			"rule", entry.Rule,
			"error", err,
		)
		return audit.NewRecorderError(entry.ID, err)
	}

	r.lastHash = entry.ChainHash

	r.logger.Debug("audit entry recorded",
		"entry_id", entry.ID,
		"evaluation_id", entry.EvaluationID,
		"rule", entry.Rule,
		"outcome", entry.Outcome,
		"sequence", entry.Sequence,
		"duration_ms", duration.Milliseconds(),
	)

	// Warn if the write was slow
	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"entry_id", entry.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}

	return nil
}

// Close releases the recorder. The recorder holds no background state;
// Close exists so callers can treat it like other record components.
func (r *Recorder) Close() error {
	return nil
}
