// Package clearance implements the pre-action compliance decision engine for
// outbound contact attempts. Every attempt is evaluated against an ordered set
// of regulatory rules before any contact is permitted, and every decision is
// recorded as an immutable audit trail.
//
// # Architecture
//
// The engine is built from small, independently testable parts:
//
//  1. Attempt Context - Immutable snapshot of one contact attempt
//  2. Rule Registry - Ordered list of rule descriptors (order is data)
//  3. Rule Evaluators - One pure decision unit per regulatory check
//  4. Decision Pipeline - Walks the registry and aggregates verdicts
//  5. Concurrency Coordinator - Serializes the window-sensitive rules per target
//  6. Fail-Closed Boundary - Converts any internal failure into a block
//
// # Decision Flow
//
//	Request → validate → AttemptContext
//	     ↓
//	Blocking rules in registry order (short-circuit on first block)
//	     ↓              (frequency/cooldown run under the per-target lock)
//	Warning rules (always evaluated, independent of the outcome)
//	     ↓
//	Audit entry per evaluated rule → EvaluationResult
//
// Any adapter error, timeout, or panic is caught exactly once at the
// fail-closed boundary and converted into a blocking result with the
// reserved code "system_error". There is no code path that converts a
// failure into a permissive result.
//
// # Verdicts
//
// A rule produces exactly one of three verdicts: Allow, Block, or Warn.
// The Verdict type is closed; its zero value is invalid and is treated as
// an engine defect, never as an allow.
//
// # Basic Usage
//
//	reg, err := clearance.NewRegistry(rules.DefaultSet(deps))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine, err := clearance.NewEngine(cfg, reg, coord, auditWriter, nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := engine.Evaluate(ctx, &clearance.Request{
//	    OrganizationID: "org-1",
//	    AccountID:      "acct-42",
//	    PhoneNumber:    "+1 (555) 010-4477",
//	})
//	if err != nil {
//	    // malformed request (ValidationError), not a compliance verdict
//	}
//	if !result.Allowed {
//	    // result.BlockedBy names the rule (or "system_error")
//	}
//
// # Concurrency
//
// Evaluations for different targets run fully in parallel. Evaluations for
// the same (organization, phone) pair serialize only the frequency and
// cooldown rules through the Coordinator, which also tracks short-lived
// reservations so that two back-to-back allows cannot breach the cap before
// the caller records the first attempt.
package clearance
