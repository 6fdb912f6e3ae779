package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"veritel-hq/dialguard/pkg/clearance"
	"veritel-hq/dialguard/pkg/server/types"
)

func TestClearanceHandler_MethodNotAllowed(t *testing.T) {
	handler := NewClearanceHandler(&fakeEngine{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/clearances", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestClearanceHandler_InvalidJSON(t *testing.T) {
	handler := NewClearanceHandler(&fakeEngine{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/clearances", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var errResp types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("response is not an error envelope: %v", err)
	}
	if errResp.Error.Code != types.CodeInvalidJSON {
		t.Errorf("error code = %q, want %q", errResp.Error.Code, types.CodeInvalidJSON)
	}
}

func TestClearanceHandler_EmptyBody(t *testing.T) {
	handler := NewClearanceHandler(&fakeEngine{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/clearances", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var errResp types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("response is not an error envelope: %v", err)
	}
	if errResp.Error.Code != types.CodeRequired {
		t.Errorf("error code = %q, want %q", errResp.Error.Code, types.CodeRequired)
	}
}

func TestClearanceHandler_Allowed(t *testing.T) {
	engine := &fakeEngine{
		result: &clearance.EvaluationResult{
			EvaluationID: "eval-1",
			Allowed:      true,
			Evaluated:    []clearance.RuleID{"permanent_hold"},
			Duration:     3 * time.Millisecond,
		},
	}
	m := &fakeMetrics{}
	handler := NewClearanceHandler(engine, m, nil)

	w := postClearance(t, handler, `{
		"organization_id": "org-1",
		"account_id": "acct-1",
		"phone_number": "+15551234567"
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var result clearance.EvaluationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("response is not an evaluation result: %v", err)
	}
	if !result.Allowed {
		t.Error("result should be allowed")
	}
	if result.EvaluationID != "eval-1" {
		t.Errorf("evaluation_id = %q, want %q", result.EvaluationID, "eval-1")
	}

	if len(m.evaluations) != 1 {
		t.Fatalf("recorded evaluations = %d, want 1", len(m.evaluations))
	}
	if m.evaluations[0].organization != "org-1" || m.evaluations[0].outcome != "allow" {
		t.Errorf("recorded evaluation = %+v, want org-1/allow", m.evaluations[0])
	}
	if len(m.blocks) != 0 {
		t.Errorf("recorded blocks = %v, want none", m.blocks)
	}
}

func TestClearanceHandler_Blocked(t *testing.T) {
	engine := &fakeEngine{
		result: &clearance.EvaluationResult{
			EvaluationID: "eval-2",
			Allowed:      false,
			BlockedBy:    "do_not_contact",
			BlockReason:  "target is on the do-not-contact registry",
			Evaluated:    []clearance.RuleID{"permanent_hold", "do_not_contact"},
		},
	}
	m := &fakeMetrics{}
	handler := NewClearanceHandler(engine, m, nil)

	w := postClearance(t, handler, `{
		"organization_id": "org-1",
		"account_id": "acct-1",
		"phone_number": "+15551234567"
	}`)

	// A blocking verdict is still a successful evaluation.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var result clearance.EvaluationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("response is not an evaluation result: %v", err)
	}
	if result.Allowed {
		t.Error("result should be blocked")
	}
	if result.BlockedBy != "do_not_contact" {
		t.Errorf("blocked_by = %q, want %q", result.BlockedBy, "do_not_contact")
	}

	if len(m.blocks) != 1 || m.blocks[0] != "do_not_contact" {
		t.Errorf("recorded blocks = %v, want [do_not_contact]", m.blocks)
	}
	if len(m.evaluations) != 1 || m.evaluations[0].outcome != "block" {
		t.Errorf("recorded evaluations = %+v, want one block outcome", m.evaluations)
	}
}

func TestClearanceHandler_SystemErrorResult(t *testing.T) {
	engine := &fakeEngine{
		result: &clearance.EvaluationResult{
			EvaluationID: "eval-3",
			Allowed:      false,
			BlockedBy:    clearance.SystemErrorCode,
			BlockReason:  "evaluation failed; attempt blocked as a precaution",
		},
	}
	m := &fakeMetrics{}
	handler := NewClearanceHandler(engine, m, nil)

	w := postClearance(t, handler, `{
		"organization_id": "org-1",
		"account_id": "acct-1",
		"phone_number": "+15551234567"
	}`)

	// Fail-closed results are verdicts, not transport errors.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	if len(m.evaluations) != 1 || m.evaluations[0].outcome != "error" {
		t.Errorf("recorded evaluations = %+v, want one error outcome", m.evaluations)
	}
	// system_error is not a rule; the per-rule block counter stays flat.
	if len(m.blocks) != 0 {
		t.Errorf("recorded blocks = %v, want none", m.blocks)
	}
}

func TestClearanceHandler_Warnings(t *testing.T) {
	engine := &fakeEngine{
		result: &clearance.EvaluationResult{
			EvaluationID: "eval-4",
			Allowed:      true,
			Warnings: []clearance.Warning{
				{Rule: "jurisdiction_consent_notice", Code: "CONSENT_NOTICE_REQUIRED"},
				{Rule: "claim_age_expired", Code: "CLAIM_AGE_EXPIRED"},
			},
		},
	}
	m := &fakeMetrics{}
	handler := NewClearanceHandler(engine, m, nil)

	w := postClearance(t, handler, `{
		"organization_id": "org-1",
		"account_id": "acct-1",
		"phone_number": "+15551234567"
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	if len(m.warnings) != 2 {
		t.Fatalf("recorded warnings = %v, want 2", m.warnings)
	}
	if m.evaluations[0].outcome != "allow_with_warnings" {
		t.Errorf("outcome = %q, want allow_with_warnings", m.evaluations[0].outcome)
	}
}

func TestClearanceHandler_ValidationError(t *testing.T) {
	engine := &fakeEngine{
		err: clearance.NewValidationError(clearance.FieldError{
			Field:   "organization_id",
			Code:    "REQUIRED",
			Message: "field is required",
		}),
	}
	m := &fakeMetrics{}
	handler := NewClearanceHandler(engine, m, nil)

	w := postClearance(t, handler, `{
		"account_id": "acct-1",
		"phone_number": "+15551234567"
	}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var errResp types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("response is not an error envelope: %v", err)
	}
	if errResp.Error.Code != types.CodeRequired {
		t.Errorf("error code = %q, want %q", errResp.Error.Code, types.CodeRequired)
	}
	if !strings.Contains(errResp.Error.Message, "organization_id") {
		t.Errorf("error message %q does not name the failed field", errResp.Error.Message)
	}

	if m.validationFailures != 1 {
		t.Errorf("validation failures = %d, want 1", m.validationFailures)
	}
	if len(m.evaluations) != 0 {
		t.Errorf("recorded evaluations = %+v, want none for rejected requests", m.evaluations)
	}
}

// TestClearanceHandler_ErrorEnvelopeShape pins the wire contract of the
// error envelope: every failed request carries id, code, message, and
// severity, the id is a fresh UUID, and the code is the stable
// SCREAMING_SNAKE value the validator minted.
func TestClearanceHandler_ErrorEnvelopeShape(t *testing.T) {
	engine := &fakeEngine{
		err: clearance.NewValidationError(clearance.FieldError{
			Field:   "phone_number",
			Code:    "INVALID_PHONE",
			Message: "number must be 10 digits",
		}),
	}
	handler := NewClearanceHandler(engine, nil, nil)

	w := postClearance(t, handler, `{
		"organization_id": "org-1",
		"account_id": "acct-1",
		"phone_number": "555"
	}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var body map[string]map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not an error envelope: %v", err)
	}
	detail, ok := body["error"]
	if !ok {
		t.Fatalf("response %s has no error key", w.Body.String())
	}
	for _, key := range []string{"id", "code", "message", "severity"} {
		if _, ok := detail[key]; !ok {
			t.Errorf("envelope is missing %q: %s", key, w.Body.String())
		}
	}

	id, _ := detail["id"].(string)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("error id %q is not a UUID: %v", id, err)
	}
	if code := detail["code"]; code != "INVALID_PHONE" {
		t.Errorf("error code = %v, want INVALID_PHONE", code)
	}
	if sev := detail["severity"]; sev != types.SeverityMedium {
		t.Errorf("error severity = %v, want %q", sev, types.SeverityMedium)
	}
	if msg, _ := detail["message"].(string); !strings.Contains(msg, "phone_number") {
		t.Errorf("error message %q does not name the failed field", msg)
	}
}

func TestClearanceHandler_CancelledBeforeStart(t *testing.T) {
	engine := &fakeEngine{err: clearance.ErrNotStarted}
	handler := NewClearanceHandler(engine, nil, nil)

	w := postClearance(t, handler, `{
		"organization_id": "org-1",
		"account_id": "acct-1",
		"phone_number": "+15551234567"
	}`)

	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want %d", w.Code, http.StatusGatewayTimeout)
	}
}

func TestClearanceHandler_NilMetrics(t *testing.T) {
	engine := &fakeEngine{
		result: &clearance.EvaluationResult{EvaluationID: "eval-5", Allowed: true},
	}
	handler := NewClearanceHandler(engine, nil, nil)

	w := postClearance(t, handler, `{
		"organization_id": "org-1",
		"account_id": "acct-1",
		"phone_number": "+15551234567"
	}`)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func postClearance(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/clearances", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// fakeEngine returns a scripted result or error.
type fakeEngine struct {
	result *clearance.EvaluationResult
	err    error
}

func (f *fakeEngine) Evaluate(ctx context.Context, req *clearance.Request) (*clearance.EvaluationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type recordedEvaluation struct {
	organization string
	outcome      string
	duration     time.Duration
}

// fakeMetrics counts recordings without touching a registry.
type fakeMetrics struct {
	mu                 sync.Mutex
	evaluations        []recordedEvaluation
	blocks             []string
	warnings           []string
	validationFailures int
}

func (f *fakeMetrics) RecordEvaluation(organization, outcome string, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluations = append(f.evaluations, recordedEvaluation{organization, outcome, duration})
}

func (f *fakeMetrics) RecordBlock(rule string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks = append(f.blocks, rule)
}

func (f *fakeMetrics) RecordWarning(rule string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warnings = append(f.warnings, rule)
}

func (f *fakeMetrics) RecordValidationFailure() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validationFailures++
}
