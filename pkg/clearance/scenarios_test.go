package clearance_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"veritel-hq/dialguard/pkg/audit"
	"veritel-hq/dialguard/pkg/audit/recorder"
	"veritel-hq/dialguard/pkg/audit/storage"
	"veritel-hq/dialguard/pkg/clearance"
	"veritel-hq/dialguard/pkg/clearance/rules"
)

// scenarioNow is 15:00 UTC, inside the calling window for a UTC target.
var scenarioNow = time.Date(2026, 8, 20, 15, 0, 0, 0, time.UTC)

type scenarioClock struct {
	now time.Time
}

func (c scenarioClock) Now() time.Time { return c.now }

// sourceFixture implements every data source the default rule set reads.
// Fields configure what each rule observes; error fields force adapter
// failures.
type sourceFixture struct {
	flags      clearance.AccountFlags
	flagsErr   error
	consent    clearance.ConsentStatus
	consentErr error
	hold       bool
	holdErr    error
	suppressed bool
	dncErr     error
	attempts   int
	connected  int
	historyErr error
	zone       *time.Location
	zoneErr    error
	rules      map[string]clearance.JurisdictionRules
	rulesErr   error
}

func defaultSources() *sourceFixture {
	return &sourceFixture{
		consent: clearance.ConsentGranted,
		zone:    time.UTC,
	}
}

func (s *sourceFixture) Flags(ctx context.Context, orgID, accountID string) (clearance.AccountFlags, error) {
	return s.flags, s.flagsErr
}

func (s *sourceFixture) Status(ctx context.Context, orgID, accountID string) (clearance.ConsentStatus, error) {
	return s.consent, s.consentErr
}

func (s *sourceFixture) ActiveHold(ctx context.Context, orgID, accountID string) (bool, error) {
	return s.hold, s.holdErr
}

func (s *sourceFixture) Suppressed(ctx context.Context, orgID, phone string) (bool, error) {
	return s.suppressed, s.dncErr
}

func (s *sourceFixture) CountAttempts(ctx context.Context, orgID, phone string, since time.Time, connectedOnly bool) (int, error) {
	if s.historyErr != nil {
		return 0, s.historyErr
	}
	if connectedOnly {
		return s.connected, nil
	}
	return s.attempts, nil
}

func (s *sourceFixture) Resolve(ctx context.Context, phone string) (*time.Location, error) {
	return s.zone, s.zoneErr
}

func (s *sourceFixture) Rules(ctx context.Context, code string) (clearance.JurisdictionRules, error) {
	if s.rulesErr != nil {
		return clearance.JurisdictionRules{}, s.rulesErr
	}
	return s.rules[code], nil
}

// harness wires the default rule set to a source fixture, a real
// coordinator, and a real recorder over in-memory audit storage.
type harness struct {
	engine  *clearance.Engine
	sources *sourceFixture
	store   *storage.MemoryStorage
}

func newHarness(t *testing.T, clock clearance.Clock, sources *sourceFixture, config *clearance.EngineConfig) *harness {
	t.Helper()

	if clock == nil {
		clock = scenarioClock{now: scenarioNow}
	}
	if sources == nil {
		sources = defaultSources()
	}
	if config == nil {
		config = clearance.DefaultEngineConfig()
	}

	coordinator := clearance.NewCoordinator(config.ReservationTTL, clock)

	set, err := rules.DefaultSet(rules.Deps{
		Flags:         sources,
		Consent:       sources,
		LegalHolds:    sources,
		DNC:           sources,
		History:       sources,
		Timezones:     sources,
		Jurisdictions: sources,
		Reservations:  coordinator,
	}, config)
	if err != nil {
		t.Fatalf("DefaultSet() failed: %v", err)
	}

	registry, err := clearance.NewRegistry(set)
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	store := storage.NewMemoryStorage()
	engine, err := clearance.NewEngine(config, registry, coordinator, recorder.NewRecorder(store, nil), clock, nil)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	return &harness{engine: engine, sources: sources, store: store}
}

func scenarioRequest() *clearance.Request {
	return &clearance.Request{
		OrganizationID: "org-1",
		AccountID:      "acct-1",
		PhoneNumber:    "+15551234567",
	}
}

var blockingOrder = []clearance.RuleID{
	clearance.RulePermanentHold,
	clearance.RuleAttorneyRepresented,
	clearance.RuleBankruptcyActive,
	clearance.RuleConsentRevoked,
	clearance.RuleLegalHoldActive,
	clearance.RuleDoNotContact,
	clearance.RuleTimeOfDay,
	clearance.RuleFrequencyCap,
	clearance.RuleCooldownAfterContact,
}

var warningOrder = []clearance.RuleID{
	clearance.RuleJurisdictionConsentNotice,
	clearance.RuleClaimAgeExpired,
}

// entriesFor fetches the audit entries of one evaluation in sequence order
// and verifies the whole record's hash chain along the way.
func entriesFor(t *testing.T, h *harness, evaluationID string) []*audit.Entry {
	t.Helper()

	ctx := context.Background()

	all, err := h.store.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if _, err := audit.VerifyChain("", all); err != nil {
		t.Fatalf("audit chain broken: %v", err)
	}

	matched, err := h.store.Query(ctx, &audit.Query{EvaluationID: evaluationID})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	return matched
}

func assertEvaluated(t *testing.T, result *clearance.EvaluationResult, entries []*audit.Entry, want []clearance.RuleID) {
	t.Helper()

	if len(result.Evaluated) != len(want) {
		t.Fatalf("Evaluated = %v, want %v", result.Evaluated, want)
	}
	for i, id := range want {
		if result.Evaluated[i] != id {
			t.Fatalf("Evaluated[%d] = %s, want %s", i, result.Evaluated[i], id)
		}
	}

	// One audit entry per evaluated rule, in the same order.
	if len(entries) != len(want) {
		t.Fatalf("audit entries = %d, want %d", len(entries), len(want))
	}
	for i, id := range want {
		if entries[i].Rule != string(id) {
			t.Errorf("entry %d rule = %s, want %s", i, entries[i].Rule, id)
		}
	}
}

func TestScenario_CleanTargetIsAllowed(t *testing.T) {
	h := newHarness(t, nil, nil, nil)

	result, err := h.engine.Evaluate(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if !result.Allowed {
		t.Fatalf("Allowed = false (blocked by %q), want true", result.BlockedBy)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}

	entries := entriesFor(t, h, result.EvaluationID)
	assertEvaluated(t, result, entries, append(append([]clearance.RuleID{}, blockingOrder...), warningOrder...))

	for _, entry := range entries {
		if entry.Outcome != audit.OutcomePass {
			t.Errorf("entry %s outcome = %q, want pass", entry.Rule, entry.Outcome)
		}
		if entry.MaskedPhone != "+*******4567" {
			t.Errorf("entry %s masked phone = %q", entry.Rule, entry.MaskedPhone)
		}
	}
}

func TestScenario_PermanentHoldShortCircuits(t *testing.T) {
	sources := defaultSources()
	sources.flags.PermanentHold = true

	h := newHarness(t, nil, sources, nil)

	result, err := h.engine.Evaluate(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if result.Allowed {
		t.Fatal("Allowed = true, want false")
	}
	if result.BlockedBy != string(clearance.RulePermanentHold) {
		t.Errorf("BlockedBy = %q, want %q", result.BlockedBy, clearance.RulePermanentHold)
	}

	// The remaining blocking rules are skipped; the warning rules still
	// run and are audited.
	entries := entriesFor(t, h, result.EvaluationID)
	assertEvaluated(t, result, entries, []clearance.RuleID{
		clearance.RulePermanentHold,
		clearance.RuleJurisdictionConsentNotice,
		clearance.RuleClaimAgeExpired,
	})

	if entries[0].Outcome != audit.OutcomeBlock {
		t.Errorf("hold entry outcome = %q, want block", entries[0].Outcome)
	}
}

func TestScenario_SuppressedNumberBlocked(t *testing.T) {
	sources := defaultSources()
	sources.suppressed = true

	h := newHarness(t, nil, sources, nil)

	result, err := h.engine.Evaluate(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if result.BlockedBy != string(clearance.RuleDoNotContact) {
		t.Errorf("BlockedBy = %q, want %q", result.BlockedBy, clearance.RuleDoNotContact)
	}

	entries := entriesFor(t, h, result.EvaluationID)
	assertEvaluated(t, result, entries, []clearance.RuleID{
		clearance.RulePermanentHold,
		clearance.RuleAttorneyRepresented,
		clearance.RuleBankruptcyActive,
		clearance.RuleConsentRevoked,
		clearance.RuleLegalHoldActive,
		clearance.RuleDoNotContact,
		clearance.RuleJurisdictionConsentNotice,
		clearance.RuleClaimAgeExpired,
	})
}

func TestScenario_OutsideCallingWindowBlocked(t *testing.T) {
	// 03:00 UTC is 21:00 the previous evening at UTC-6. The window ends
	// at 21:00, so the attempt must be blocked.
	clock := scenarioClock{now: time.Date(2026, 8, 21, 3, 0, 0, 0, time.UTC)}
	sources := defaultSources()
	sources.zone = time.FixedZone("UTC-6", -6*60*60)

	h := newHarness(t, clock, sources, nil)

	result, err := h.engine.Evaluate(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if result.Allowed {
		t.Fatal("Allowed = true, want false at 21:00 local")
	}
	if result.BlockedBy != string(clearance.RuleTimeOfDay) {
		t.Errorf("BlockedBy = %q, want %q", result.BlockedBy, clearance.RuleTimeOfDay)
	}

	entries := entriesFor(t, h, result.EvaluationID)
	if len(entries) != 9 {
		t.Errorf("audit entries = %d, want 9 (7 blocking, 2 warnings)", len(entries))
	}
}

func TestScenario_FrequencyCapBlocked(t *testing.T) {
	sources := defaultSources()
	sources.attempts = 7

	h := newHarness(t, nil, sources, nil)

	result, err := h.engine.Evaluate(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if result.BlockedBy != string(clearance.RuleFrequencyCap) {
		t.Errorf("BlockedBy = %q, want %q", result.BlockedBy, clearance.RuleFrequencyCap)
	}

	entries := entriesFor(t, h, result.EvaluationID)
	if len(entries) != 10 {
		t.Errorf("audit entries = %d, want 10 (8 blocking, 2 warnings)", len(entries))
	}

	var capEntry *audit.Entry
	for _, entry := range entries {
		if entry.Rule == string(clearance.RuleFrequencyCap) {
			capEntry = entry
		}
	}
	if capEntry == nil || capEntry.Code != "FREQUENCY_CAP_REACHED" {
		t.Errorf("frequency entry = %+v, want code FREQUENCY_CAP_REACHED", capEntry)
	}
}

func TestScenario_CooldownAfterConnectedContact(t *testing.T) {
	sources := defaultSources()
	sources.attempts = 2
	sources.connected = 1

	h := newHarness(t, nil, sources, nil)

	result, err := h.engine.Evaluate(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if result.BlockedBy != string(clearance.RuleCooldownAfterContact) {
		t.Errorf("BlockedBy = %q, want %q", result.BlockedBy, clearance.RuleCooldownAfterContact)
	}

	entries := entriesFor(t, h, result.EvaluationID)
	if len(entries) != 11 {
		t.Errorf("audit entries = %d, want 11 (9 blocking, 2 warnings)", len(entries))
	}
}

func TestScenario_AdapterFailureFailsClosed(t *testing.T) {
	sources := defaultSources()
	sources.dncErr = errors.New("registry unavailable")

	h := newHarness(t, nil, sources, nil)

	result, err := h.engine.Evaluate(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() returned an error, fail-closed results must not: %v", err)
	}

	if result.Allowed {
		t.Fatal("Allowed = true, want false when a source fails")
	}
	if result.BlockedBy != clearance.SystemErrorCode {
		t.Errorf("BlockedBy = %q, want %q", result.BlockedBy, clearance.SystemErrorCode)
	}

	entries := entriesFor(t, h, result.EvaluationID)

	systemErrors := 0
	for _, entry := range entries {
		if entry.Outcome == audit.OutcomeSystemError {
			systemErrors++
			if entry.Rule != string(clearance.RuleDoNotContact) {
				t.Errorf("system_error attributed to %q, want %q", entry.Rule, clearance.RuleDoNotContact)
			}
		}
	}
	if systemErrors != 1 {
		t.Errorf("system_error entries = %d, want exactly 1", systemErrors)
	}

	// Five passing rules before the failing one, then the system_error.
	if len(entries) != 6 {
		t.Errorf("audit entries = %d, want 6", len(entries))
	}
}

func TestScenario_TimezoneResolutionFailureFailsClosed(t *testing.T) {
	sources := defaultSources()
	sources.zoneErr = errors.New("unassigned area code")

	h := newHarness(t, nil, sources, nil)

	result, err := h.engine.Evaluate(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	// An unresolvable timezone must never fall back to a guess.
	if result.Allowed {
		t.Fatal("Allowed = true, want false when the timezone cannot be resolved")
	}
	if result.BlockedBy != clearance.SystemErrorCode {
		t.Errorf("BlockedBy = %q, want %q", result.BlockedBy, clearance.SystemErrorCode)
	}
}

func TestScenario_JurisdictionWarningsOnAllowedAttempt(t *testing.T) {
	sources := defaultSources()
	sources.rules = map[string]clearance.JurisdictionRules{
		"TX": {
			ConsentNoticeRequired:    true,
			ConsentNoticeText:        "Texas requires a call recording disclosure",
			ClaimEnforceabilityYears: 4,
		},
	}

	h := newHarness(t, nil, sources, nil)

	req := scenarioRequest()
	req.JurisdictionCode = "tx"
	req.ClaimOpenedAt = time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)

	result, err := h.engine.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if !result.Allowed {
		t.Fatalf("Allowed = false (blocked by %q), want true", result.BlockedBy)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("Warnings = %v, want 2", result.Warnings)
	}

	if result.Warnings[0].Rule != clearance.RuleJurisdictionConsentNotice {
		t.Errorf("first warning = %s, want %s", result.Warnings[0].Rule, clearance.RuleJurisdictionConsentNotice)
	}
	if result.Warnings[0].Reason != "Texas requires a call recording disclosure" {
		t.Errorf("notice reason = %q", result.Warnings[0].Reason)
	}
	if result.Warnings[1].Rule != clearance.RuleClaimAgeExpired {
		t.Errorf("second warning = %s, want %s", result.Warnings[1].Rule, clearance.RuleClaimAgeExpired)
	}

	entries := entriesFor(t, h, result.EvaluationID)
	warns := 0
	for _, entry := range entries {
		if entry.Outcome == audit.OutcomeWarn {
			warns++
		}
	}
	if warns != 2 {
		t.Errorf("warn entries = %d, want 2", warns)
	}
}

func TestScenario_UnknownConsentDoesNotBlock(t *testing.T) {
	sources := defaultSources()
	sources.consent = clearance.ConsentUnknown

	h := newHarness(t, nil, sources, nil)

	result, err := h.engine.Evaluate(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if !result.Allowed {
		t.Errorf("Allowed = false (blocked by %q), want true for unknown consent", result.BlockedBy)
	}
}

func TestScenario_RevokedConsentBlocks(t *testing.T) {
	sources := defaultSources()
	sources.consent = clearance.ConsentRevoked

	h := newHarness(t, nil, sources, nil)

	result, err := h.engine.Evaluate(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if result.BlockedBy != string(clearance.RuleConsentRevoked) {
		t.Errorf("BlockedBy = %q, want %q", result.BlockedBy, clearance.RuleConsentRevoked)
	}
}

func TestScenario_ConcurrentEvaluationsHonorCap(t *testing.T) {
	config := clearance.DefaultEngineConfig()
	config.FrequencyCap = 3

	h := newHarness(t, nil, nil, config)

	const evaluations = 10
	results := make([]*clearance.EvaluationResult, evaluations)

	var wg sync.WaitGroup
	for i := 0; i < evaluations; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := h.engine.Evaluate(context.Background(), scenarioRequest())
			if err != nil {
				t.Errorf("Evaluate() failed: %v", err)
				return
			}
			results[i] = result
		}(i)
	}
	wg.Wait()

	allowed, capBlocked := 0, 0
	for _, result := range results {
		if result == nil {
			t.Fatal("missing result")
		}
		switch {
		case result.Allowed:
			allowed++
		case result.BlockedBy == string(clearance.RuleFrequencyCap):
			capBlocked++
		default:
			t.Errorf("unexpected block: %q (%s)", result.BlockedBy, result.BlockReason)
		}
	}

	// With no recorded history and a cap of three, exactly three of the
	// racing evaluations may be allowed; the reservation ledger makes each
	// allow visible to the evaluations that follow it.
	if allowed != 3 {
		t.Errorf("allowed = %d, want exactly 3", allowed)
	}
	if capBlocked != 7 {
		t.Errorf("cap blocked = %d, want 7", capBlocked)
	}
}

func TestScenario_SequentialAllowsCountReservations(t *testing.T) {
	config := clearance.DefaultEngineConfig()
	config.FrequencyCap = 1

	h := newHarness(t, nil, nil, config)
	ctx := context.Background()

	first, err := h.engine.Evaluate(ctx, scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if !first.Allowed {
		t.Fatalf("first attempt blocked by %q, want allowed", first.BlockedBy)
	}

	// The first allow is still unrecorded; its reservation must block the
	// second evaluation.
	second, err := h.engine.Evaluate(ctx, scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if second.Allowed {
		t.Fatal("second attempt allowed, want blocked by the reservation")
	}
	if second.BlockedBy != string(clearance.RuleFrequencyCap) {
		t.Errorf("BlockedBy = %q, want %q", second.BlockedBy, clearance.RuleFrequencyCap)
	}

	// Once the attempt is recorded and the reservation settled, history
	// carries the count instead.
	h.engine.Coordinator().Settle("org-1", "+15551234567")
	h.sources.attempts = 1

	third, err := h.engine.Evaluate(ctx, scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if third.Allowed {
		t.Fatal("third attempt allowed, want blocked by recorded history")
	}
}

func TestScenario_PerOrgCapOverride(t *testing.T) {
	config := clearance.DefaultEngineConfig()
	config.FrequencyCapByOrg = map[string]int{"org-1": 2}

	sources := defaultSources()
	sources.attempts = 2

	h := newHarness(t, nil, sources, config)

	result, err := h.engine.Evaluate(context.Background(), scenarioRequest())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if result.BlockedBy != string(clearance.RuleFrequencyCap) {
		t.Errorf("BlockedBy = %q, want %q at the org override cap", result.BlockedBy, clearance.RuleFrequencyCap)
	}
}
