package audit

import (
	"encoding/hex"
	"errors"
	"testing"
	"time"
)

func testEntry(id, rule string, outcome Outcome) *Entry {
	return &Entry{
		ID:             id,
		EvaluationID:   "eval-1",
		OrganizationID: "org-1",
		Rule:           rule,
		Outcome:        outcome,
		Code:           "TEST_CODE",
		Reason:         "test reason",
		MaskedPhone:    "+*******4567",
		OccurredAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestChainHash_Deterministic(t *testing.T) {
	entry := testEntry("id-1", "do_not_contact", OutcomeBlock)

	hash1 := ChainHash("", entry)
	hash2 := ChainHash("", entry)
	hash3 := ChainHash("", entry)

	if hash1 != hash2 || hash2 != hash3 {
		t.Errorf("ChainHash() not deterministic: %v, %v, %v", hash1, hash2, hash3)
	}
}

func TestChainHash_HexEncoding(t *testing.T) {
	result := ChainHash("", testEntry("id-1", "time_of_day", OutcomePass))

	if _, err := hex.DecodeString(result); err != nil {
		t.Errorf("ChainHash() returned invalid hex: %v", err)
	}

	// SHA-256 produces 32 bytes = 64 hex characters
	if len(result) != 64 {
		t.Errorf("ChainHash() length = %d, want 64", len(result))
	}
}

func TestChainHash_ContentSensitive(t *testing.T) {
	base := testEntry("id-1", "time_of_day", OutcomePass)
	baseHash := ChainHash("", base)

	tests := []struct {
		name   string
		mutate func(*Entry)
	}{
		{"id", func(e *Entry) { e.ID = "id-2" }},
		{"evaluation id", func(e *Entry) { e.EvaluationID = "eval-2" }},
		{"organization id", func(e *Entry) { e.OrganizationID = "org-2" }},
		{"rule", func(e *Entry) { e.Rule = "frequency_cap" }},
		{"outcome", func(e *Entry) { e.Outcome = OutcomeBlock }},
		{"code", func(e *Entry) { e.Code = "OTHER_CODE" }},
		{"reason", func(e *Entry) { e.Reason = "other reason" }},
		{"masked phone", func(e *Entry) { e.MaskedPhone = "+*******9999" }},
		{"occurred at", func(e *Entry) { e.OccurredAt = e.OccurredAt.Add(time.Nanosecond) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutated := *base
			tt.mutate(&mutated)
			if got := ChainHash("", &mutated); got == baseHash {
				t.Errorf("ChainHash() unchanged after mutating %s", tt.name)
			}
		})
	}
}

func TestChainHash_AssignedFieldsExcluded(t *testing.T) {
	// Sequence and ChainHash are assigned after hashing, so they must not
	// feed back into the hash.
	entry := testEntry("id-1", "time_of_day", OutcomePass)
	before := ChainHash("", entry)

	entry.Sequence = 42
	entry.ChainHash = "already-set"

	if after := ChainHash("", entry); after != before {
		t.Errorf("ChainHash() changed after assigning sequence and chain hash: %v != %v", after, before)
	}
}

func TestChainHash_PrevDependent(t *testing.T) {
	entry := testEntry("id-1", "time_of_day", OutcomePass)

	first := ChainHash("", entry)
	chained := ChainHash(first, entry)

	if first == chained {
		t.Error("ChainHash() ignored the previous hash")
	}
}

func TestVerifyChain_Intact(t *testing.T) {
	entries := []*Entry{
		testEntry("id-1", "permanent_hold", OutcomePass),
		testEntry("id-2", "attorney_represented", OutcomePass),
		testEntry("id-3", "do_not_contact", OutcomeBlock),
	}

	prev := ""
	for i, e := range entries {
		e.Sequence = int64(i + 1)
		e.ChainHash = ChainHash(prev, e)
		prev = e.ChainHash
	}

	head, err := VerifyChain("", entries)
	if err != nil {
		t.Fatalf("VerifyChain() error = %v", err)
	}
	if head != entries[2].ChainHash {
		t.Errorf("VerifyChain() head = %v, want %v", head, entries[2].ChainHash)
	}
}

func TestVerifyChain_Empty(t *testing.T) {
	head, err := VerifyChain("", nil)
	if err != nil {
		t.Fatalf("VerifyChain() error = %v", err)
	}
	if head != "" {
		t.Errorf("VerifyChain() head = %q, want empty", head)
	}
}

func TestVerifyChain_DetectsTampering(t *testing.T) {
	entries := []*Entry{
		testEntry("id-1", "permanent_hold", OutcomePass),
		testEntry("id-2", "do_not_contact", OutcomeBlock),
		testEntry("id-3", "time_of_day", OutcomePass),
	}

	prev := ""
	for i, e := range entries {
		e.Sequence = int64(i + 1)
		e.ChainHash = ChainHash(prev, e)
		prev = e.ChainHash
	}

	// Rewrite a recorded outcome without recomputing the hash.
	entries[1].Outcome = OutcomePass

	_, err := VerifyChain("", entries)
	if err == nil {
		t.Fatal("VerifyChain() accepted a tampered chain")
	}

	var mismatch *ChainMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("VerifyChain() error type = %T, want *ChainMismatchError", err)
	}
	if mismatch.Index != 1 {
		t.Errorf("ChainMismatchError.Index = %d, want 1", mismatch.Index)
	}
	if mismatch.Sequence != 2 {
		t.Errorf("ChainMismatchError.Sequence = %d, want 2", mismatch.Sequence)
	}
	if mismatch.Stored == mismatch.Computed {
		t.Error("ChainMismatchError stored and computed hashes are equal")
	}
}

func TestVerifyChain_DetectsDeletion(t *testing.T) {
	entries := []*Entry{
		testEntry("id-1", "permanent_hold", OutcomePass),
		testEntry("id-2", "do_not_contact", OutcomeBlock),
		testEntry("id-3", "time_of_day", OutcomePass),
	}

	prev := ""
	for i, e := range entries {
		e.Sequence = int64(i + 1)
		e.ChainHash = ChainHash(prev, e)
		prev = e.ChainHash
	}

	// Removing an interior entry breaks the link to its successor.
	truncated := []*Entry{entries[0], entries[2]}

	var mismatch *ChainMismatchError
	_, err := VerifyChain("", truncated)
	if !errors.As(err, &mismatch) {
		t.Fatalf("VerifyChain() error = %v, want *ChainMismatchError", err)
	}
	if mismatch.Sequence != 3 {
		t.Errorf("ChainMismatchError.Sequence = %d, want 3", mismatch.Sequence)
	}
}

func BenchmarkChainHash(b *testing.B) {
	entry := testEntry("id-1", "do_not_contact", OutcomeBlock)
	prev := ChainHash("", entry)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = ChainHash(prev, entry)
	}
}
