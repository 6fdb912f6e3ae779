// Package rules contains the evaluators for the default compliance rule
// set. Each evaluator checks exactly one regulatory concern against one
// data source and returns an allow, block, or warn verdict; the engine
// owns ordering, short-circuiting, and auditing.
//
// # Default Rule Set
//
// DefaultSet wires the evaluators into the registry order the engine
// expects. Blocking rules, cheapest and most severe first:
//
//	permanent_hold          account carries an unconditional contact ban
//	attorney_represented    account is represented by counsel
//	bankruptcy_active       account is in active bankruptcy
//	consent_revoked         target explicitly revoked contact consent
//	legal_hold_active       active dispute or litigation hold
//	do_not_contact          number on an org or global suppression list
//	time_of_day             outside the target's local calling window
//	frequency_cap           trailing-window attempt cap reached
//	cooldown_after_contact  recent connected contact
//
// Warning rules, always evaluated:
//
//	jurisdiction_consent_notice  jurisdiction requires a disclosure
//	claim_age_expired            claim older than its enforceability limit
//
// # Failure Semantics
//
// Evaluators never guess. When a data source cannot answer, the
// evaluator returns the error and the engine fails the evaluation
// closed. In particular the calling-window rule treats an unresolvable
// timezone as an error rather than assuming the server's zone.
package rules
