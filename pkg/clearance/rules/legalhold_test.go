package rules

import (
	"context"
	"errors"
	"testing"
)

func TestLegalHold(t *testing.T) {
	rule := NewLegalHold(holdStore{active: true})

	verdict, err := rule.Evaluate(context.Background(), testAttempt())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if !verdict.IsBlock() || verdict.Code() != CodeLegalHoldActive {
		t.Errorf("verdict = %s (%s), want block with %s", verdict, verdict.Code(), CodeLegalHoldActive)
	}

	rule = NewLegalHold(holdStore{})
	verdict, err = rule.Evaluate(context.Background(), testAttempt())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if !verdict.IsAllow() {
		t.Errorf("verdict = %s, want allow without a hold", verdict)
	}
}

func TestLegalHold_StoreError(t *testing.T) {
	cause := errors.New("hold lookup failed")
	rule := NewLegalHold(holdStore{err: cause})

	_, err := rule.Evaluate(context.Background(), testAttempt())
	if !errors.Is(err, cause) {
		t.Errorf("Evaluate() error = %v, want wrapped %v", err, cause)
	}
}
