package clearance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"veritel-hq/dialguard/pkg/audit"
)

// Engine evaluates contact attempts against the rule registry. It is the
// only entry point for compliance decisions: a false Allowed result, for
// any reason including internal failure, must prevent the contact.
type Engine struct {
	// config contains timeouts, windows, and caps
	config *EngineConfig

	// registry holds the ordered rule set
	registry *Registry

	// coordinator serializes the window-sensitive rules per target
	coordinator *Coordinator

	// audit is the append-only decision record sink
	audit audit.Writer

	// clock is the injectable time source
	clock Clock

	// logger for structured logging
	logger *slog.Logger

	// validate checks inbound requests
	validate requestValidator

	// metrics receives per-rule timings; nil disables recording
	metrics EngineMetrics
}

// EngineMetrics receives per-rule evaluation timings.
type EngineMetrics interface {
	RecordRuleDuration(rule string, duration time.Duration)
}

// evalState accumulates the outcome of one evaluation as the pipeline
// walks the registry.
type evalState struct {
	start       time.Time
	current     RuleID
	evaluated   []RuleID
	warnings    []Warning
	blockedBy   string
	blockReason string
	reservation string
}

// NewEngine creates a decision engine. The registry and audit writer are
// required; a nil coordinator, clock, or logger falls back to a fresh
// coordinator, the system clock, and slog.Default respectively.
func NewEngine(config *EngineConfig, registry *Registry, coordinator *Coordinator, sink audit.Writer, clock Clock, logger *slog.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultEngineConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, fmt.Errorf("rule registry cannot be nil")
	}
	if sink == nil {
		return nil, fmt.Errorf("audit writer cannot be nil")
	}
	if clock == nil {
		clock = SystemClock()
	}
	if coordinator == nil {
		coordinator = NewCoordinator(config.ReservationTTL, clock)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		config:      config,
		registry:    registry,
		coordinator: coordinator,
		audit:       sink,
		clock:       clock,
		logger:      logger.With("component", "clearance.engine"),
		validate:    newRequestValidator(),
	}, nil
}

// SetMetrics attaches a telemetry sink for per-rule timings. Call it
// before the engine serves evaluations.
func (e *Engine) SetMetrics(m EngineMetrics) {
	e.metrics = m
}

// Coordinator returns the engine's concurrency coordinator, for wiring the
// reservation ledger into the frequency rule and the attempt recorder.
func (e *Engine) Coordinator() *Coordinator {
	return e.coordinator
}

// Evaluate decides one contact attempt. A malformed request returns a
// ValidationError and nothing is evaluated or audited. Once evaluation
// starts it always runs to a terminal verdict, even if the caller's
// context is cancelled mid-flight: the decision and its audit trail are
// independent of whether the caller waited for the answer.
func (e *Engine) Evaluate(ctx context.Context, req *Request) (*EvaluationResult, error) {
	if req == nil {
		return nil, NewValidationError(FieldError{
			Field:   "request",
			Code:    "REQUIRED",
			Message: "request cannot be nil",
		})
	}

	// Cancellation before evaluation starts is a pure no-op.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotStarted, err)
	}

	normalized, verr := e.validate.normalize(req)
	if verr != nil {
		return nil, verr
	}

	attempt := &AttemptContext{
		EvaluationID:     uuid.New().String(),
		OrganizationID:   normalized.OrganizationID,
		AccountID:        normalized.AccountID,
		PhoneNumber:      normalized.PhoneNumber,
		OccurredAt:       e.clock.Now(),
		JurisdictionCode: normalized.JurisdictionCode,
		ClaimOpenedAt:    normalized.ClaimOpenedAt,
	}

	// Detach from the caller's cancellation while keeping the outer
	// evaluation deadline. An abandoned request still gets its verdict
	// and its audit trail.
	evalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.config.EvaluationTimeout)
	defer cancel()

	return e.evaluateAttempt(evalCtx, attempt), nil
}

// evaluateAttempt is the fail-closed boundary. Every failure below it,
// adapter errors, timeouts, lock contention, audit write failures, and
// panics, is converted here into a blocking result exactly once.
func (e *Engine) evaluateAttempt(ctx context.Context, attempt *AttemptContext) *EvaluationResult {
	state := &evalState{start: e.clock.Now()}

	if err := e.runPipeline(ctx, attempt, state); err != nil {
		return e.failClosed(ctx, attempt, state, err)
	}
	return e.buildResult(attempt, state)
}

// runPipeline walks the registry: blocking rules in order with
// short-circuit on the first block, then every warning rule regardless of
// the blocking outcome. Each evaluated rule is audited before the
// pipeline moves on.
func (e *Engine) runPipeline(ctx context.Context, attempt *AttemptContext, state *evalState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &SystemError{
				Rule:    state.current,
				Message: fmt.Sprintf("recovered panic: %v", r),
			}
		}
	}()

	rules := e.registry.Rules()
	var blocking, warning []Rule
	for _, rule := range rules {
		if rule.Category == CategoryBlocking {
			blocking = append(blocking, rule)
		} else {
			warning = append(warning, rule)
		}
	}

	locked := false
	release := func() {}
	defer func() {
		if locked {
			release()
		}
	}()

	for i, rule := range blocking {
		state.current = rule.ID

		// The window-sensitive rules run under the per-target lock.
		if lockScoped(rule.ID) && !locked {
			rel, aerr := e.coordinator.Acquire(ctx, attempt.OrganizationID, attempt.PhoneNumber, e.config.LockWait)
			if aerr != nil {
				return aerr
			}
			release, locked = rel, true
		}

		verdict, rerr := e.evaluateRule(ctx, rule, attempt)
		if rerr != nil {
			return rerr
		}
		if rerr := e.record(ctx, attempt, rule.ID, verdict); rerr != nil {
			return rerr
		}
		state.evaluated = append(state.evaluated, rule.ID)

		if verdict.IsBlock() {
			state.blockedBy = string(rule.ID)
			state.blockReason = verdict.Reason()
			if state.reservation != "" {
				e.coordinator.Cancel(attempt.OrganizationID, attempt.PhoneNumber, state.reservation)
				state.reservation = ""
			}
			break
		}

		// Once the last window-sensitive rule has passed, reserve the
		// allow while still holding the lock, then release it so the
		// warning rules run unserialized.
		if locked && !lockScopedAfter(blocking, i+1) {
			state.reservation = e.coordinator.Reserve(attempt.OrganizationID, attempt.PhoneNumber)
			release()
			locked = false
		}
	}

	for _, rule := range warning {
		state.current = rule.ID

		verdict, rerr := e.evaluateRule(ctx, rule, attempt)
		if rerr != nil {
			return rerr
		}
		if rerr := e.record(ctx, attempt, rule.ID, verdict); rerr != nil {
			return rerr
		}
		state.evaluated = append(state.evaluated, rule.ID)

		if verdict.IsWarn() {
			state.warnings = append(state.warnings, Warning{
				Rule:   rule.ID,
				Code:   verdict.Code(),
				Reason: verdict.Reason(),
			})
		}
	}

	return nil
}

// evaluateRule runs a single rule under the per-source timeout and checks
// that the verdict is well-formed for the rule's category.
func (e *Engine) evaluateRule(ctx context.Context, rule Rule, attempt *AttemptContext) (Verdict, error) {
	ruleCtx, cancel := context.WithTimeout(ctx, e.config.SourceTimeout)
	defer cancel()

	started := e.clock.Now()
	verdict, err := rule.Evaluator.Evaluate(ruleCtx, attempt)
	if e.metrics != nil {
		e.metrics.RecordRuleDuration(string(rule.ID), e.clock.Now().Sub(started))
	}
	if err != nil {
		return Verdict{}, NewDependencyError(rule.ID, err)
	}

	if !verdict.IsValid() {
		return Verdict{}, &SystemError{Rule: rule.ID, Message: "rule produced an invalid verdict"}
	}
	switch rule.Category {
	case CategoryBlocking:
		if verdict.IsWarn() {
			return Verdict{}, &SystemError{Rule: rule.ID, Message: "blocking rule produced a warning verdict"}
		}
	case CategoryWarning:
		if verdict.IsBlock() {
			return Verdict{}, &SystemError{Rule: rule.ID, Message: "warning rule produced a blocking verdict"}
		}
	}

	return verdict, nil
}

// record appends the audit entry for one evaluated rule. The entry must
// be durably written before the rule counts as recorded; a write failure
// fails the evaluation closed.
func (e *Engine) record(ctx context.Context, attempt *AttemptContext, rule RuleID, verdict Verdict) error {
	entry := &audit.Entry{
		EvaluationID:   attempt.EvaluationID,
		OrganizationID: attempt.OrganizationID,
		Rule:           string(rule),
		Outcome:        outcomeFor(verdict),
		Code:           verdict.Code(),
		Reason:         verdict.Reason(),
		MaskedPhone:    audit.MaskPhone(attempt.PhoneNumber),
		OccurredAt:     e.clock.Now(),
	}
	if err := e.audit.Append(ctx, entry); err != nil {
		return &DependencyError{Rule: rule, Source: "audit", Cause: err}
	}
	return nil
}

// failClosed converts an evaluation failure into a blocking result with
// one system_error audit entry attributed to the rule that was executing.
func (e *Engine) failClosed(ctx context.Context, attempt *AttemptContext, state *evalState, cause error) *EvaluationResult {
	e.logger.Error("fail-closed: blocking attempt after evaluation failure",
		"evaluation_id", attempt.EvaluationID,
		"organization_id", attempt.OrganizationID,
		"rule", state.current,
		"error", cause,
	)

	if state.reservation != "" {
		e.coordinator.Cancel(attempt.OrganizationID, attempt.PhoneNumber, state.reservation)
		state.reservation = ""
	}

	// The audit record must survive even when the evaluation deadline
	// has already expired.
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.config.SourceTimeout)
	defer cancel()

	entry := &audit.Entry{
		EvaluationID:   attempt.EvaluationID,
		OrganizationID: attempt.OrganizationID,
		Rule:           string(state.current),
		Outcome:        audit.OutcomeSystemError,
		Code:           SystemErrorCode,
		Reason:         cause.Error(),
		MaskedPhone:    audit.MaskPhone(attempt.PhoneNumber),
		OccurredAt:     e.clock.Now(),
	}
	if err := e.audit.Append(auditCtx, entry); err != nil {
		e.logger.Error("failed to record system_error audit entry",
			"evaluation_id", attempt.EvaluationID,
			"error", err,
		)
	} else {
		state.evaluated = append(state.evaluated, state.current)
	}

	state.blockedBy = SystemErrorCode
	state.blockReason = "compliance evaluation failed"
	return e.buildResult(attempt, state)
}

// buildResult assembles the final result from the pipeline state.
func (e *Engine) buildResult(attempt *AttemptContext, state *evalState) *EvaluationResult {
	now := e.clock.Now()
	return &EvaluationResult{
		EvaluationID: attempt.EvaluationID,
		Allowed:      state.blockedBy == "",
		BlockedBy:    state.blockedBy,
		BlockReason:  state.blockReason,
		Warnings:     state.warnings,
		Evaluated:    state.evaluated,
		EvaluatedAt:  now,
		Duration:     now.Sub(state.start),
	}
}

// outcomeFor maps a verdict to its audit outcome.
func outcomeFor(v Verdict) audit.Outcome {
	switch {
	case v.IsBlock():
		return audit.OutcomeBlock
	case v.IsWarn():
		return audit.OutcomeWarn
	default:
		return audit.OutcomePass
	}
}

// lockScoped reports whether a rule must run under the per-target lock.
func lockScoped(id RuleID) bool {
	return id == RuleFrequencyCap || id == RuleCooldownAfterContact
}

// lockScopedAfter reports whether any lock-scoped rule remains at or after
// position from.
func lockScopedAfter(rules []Rule, from int) bool {
	for _, rule := range rules[from:] {
		if lockScoped(rule.ID) {
			return true
		}
	}
	return false
}
