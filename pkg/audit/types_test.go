package audit

import "testing"

func TestOutcomeValid(t *testing.T) {
	tests := []struct {
		outcome Outcome
		valid   bool
	}{
		{OutcomePass, true},
		{OutcomeBlock, true},
		{OutcomeWarn, true},
		{OutcomeSystemError, true},
		{Outcome(""), false},
		{Outcome("allow"), false},
		{Outcome("PASS"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			if got := tt.outcome.Valid(); got != tt.valid {
				t.Errorf("Outcome(%q).Valid() = %v, want %v", tt.outcome, got, tt.valid)
			}
		})
	}
}
