package clearance

import "testing"

func TestVerdict_ZeroValueIsInvalid(t *testing.T) {
	var v Verdict

	if v.IsValid() {
		t.Error("zero Verdict reports valid")
	}
	if v.IsAllow() {
		t.Error("zero Verdict reports allow")
	}
	if v.IsBlock() || v.IsWarn() {
		t.Error("zero Verdict reports block or warn")
	}
}

func TestVerdict_Constructors(t *testing.T) {
	tests := []struct {
		name    string
		verdict Verdict
		isAllow bool
		isBlock bool
		isWarn  bool
		code    string
		reason  string
		str     string
	}{
		{"allow", Allow(), true, false, false, "", "", "allow"},
		{"block", Block("HOLD", "account held"), false, true, false, "HOLD", "account held", "block(HOLD)"},
		{"warn", Warn("NOTICE", "notice required"), false, false, true, "NOTICE", "notice required", "warn(NOTICE)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.verdict
			if !v.IsValid() {
				t.Error("constructed Verdict reports invalid")
			}
			if v.IsAllow() != tt.isAllow || v.IsBlock() != tt.isBlock || v.IsWarn() != tt.isWarn {
				t.Errorf("predicates = (%v, %v, %v), want (%v, %v, %v)",
					v.IsAllow(), v.IsBlock(), v.IsWarn(), tt.isAllow, tt.isBlock, tt.isWarn)
			}
			if v.Code() != tt.code {
				t.Errorf("Code() = %q, want %q", v.Code(), tt.code)
			}
			if v.Reason() != tt.reason {
				t.Errorf("Reason() = %q, want %q", v.Reason(), tt.reason)
			}
			if v.String() != tt.str {
				t.Errorf("String() = %q, want %q", v.String(), tt.str)
			}
		})
	}
}

func TestVerdict_InvalidString(t *testing.T) {
	var v Verdict
	if v.String() != "invalid" {
		t.Errorf("String() = %q, want %q", v.String(), "invalid")
	}
}
