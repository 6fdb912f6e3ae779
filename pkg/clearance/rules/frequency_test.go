package rules

import (
	"context"
	"errors"
	"strings"
	"testing"

	"veritel-hq/dialguard/pkg/clearance"
)

func TestFrequencyCap(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		reserved  int
		cap       int
		wantBlock bool
	}{
		{"no history", 0, 0, 7, false},
		{"below cap", 6, 0, 7, false},
		{"at cap", 7, 0, 7, true},
		{"over cap", 9, 0, 7, true},
		// Live reservations count exactly like recorded attempts.
		{"reservations fill the cap", 5, 2, 7, true},
		{"reservations below the cap", 5, 1, 7, false},
		{"reservations alone reach the cap", 0, 3, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := clearance.DefaultEngineConfig()
			config.FrequencyCap = tt.cap

			rule := NewFrequencyCap(&historyStore{attempts: tt.attempts}, reservationCount(tt.reserved), config)

			verdict, err := rule.Evaluate(context.Background(), testAttempt())
			if err != nil {
				t.Fatalf("Evaluate() failed: %v", err)
			}
			if verdict.IsBlock() != tt.wantBlock {
				t.Errorf("IsBlock() = %v, want %v", verdict.IsBlock(), tt.wantBlock)
			}
			if tt.wantBlock && verdict.Code() != CodeFrequencyCapReached {
				t.Errorf("Code() = %q, want %q", verdict.Code(), CodeFrequencyCapReached)
			}
		})
	}
}

func TestFrequencyCap_WindowPassedToHistory(t *testing.T) {
	history := &historyStore{}
	config := clearance.DefaultEngineConfig()

	rule := NewFrequencyCap(history, nil, config)

	attempt := testAttempt()
	if _, err := rule.Evaluate(context.Background(), attempt); err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	wantSince := attempt.OccurredAt.Add(-config.FrequencyWindow)
	if !history.gotSince.Equal(wantSince) {
		t.Errorf("since = %v, want %v", history.gotSince, wantSince)
	}
	if history.gotConnectedOnly {
		t.Error("connectedOnly = true, the frequency cap counts every attempt")
	}
}

func TestFrequencyCap_NilReservations(t *testing.T) {
	config := clearance.DefaultEngineConfig()
	rule := NewFrequencyCap(&historyStore{attempts: 6}, nil, config)

	verdict, err := rule.Evaluate(context.Background(), testAttempt())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if !verdict.IsAllow() {
		t.Errorf("verdict = %s, want allow below the cap without a counter", verdict)
	}
}

func TestFrequencyCap_PerOrgOverride(t *testing.T) {
	config := clearance.DefaultEngineConfig()
	config.FrequencyCapByOrg = map[string]int{"org-1": 3}

	rule := NewFrequencyCap(&historyStore{attempts: 3}, nil, config)

	verdict, err := rule.Evaluate(context.Background(), testAttempt())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if !verdict.IsBlock() {
		t.Error("IsBlock() = false, want block at the org override cap")
	}
	if !strings.Contains(verdict.Reason(), "cap 3") {
		t.Errorf("Reason() = %q, want the effective cap", verdict.Reason())
	}

	// The same history is under the default cap for other organizations.
	attempt := testAttempt()
	attempt.OrganizationID = "org-2"

	verdict, err = rule.Evaluate(context.Background(), attempt)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if !verdict.IsAllow() {
		t.Errorf("verdict = %s, want allow under the default cap", verdict)
	}
}

func TestFrequencyCap_HistoryError(t *testing.T) {
	cause := errors.New("history store down")
	rule := NewFrequencyCap(&historyStore{err: cause}, nil, clearance.DefaultEngineConfig())

	_, err := rule.Evaluate(context.Background(), testAttempt())
	if !errors.Is(err, cause) {
		t.Errorf("Evaluate() error = %v, want wrapped %v", err, cause)
	}
}

