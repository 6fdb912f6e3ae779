package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"veritel-hq/dialguard/pkg/audit"
)

func TestMemoryStorage_AppendAssignsSequence(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()

	entries := seedEntries(t, storage, 3)
	for i, entry := range entries {
		if entry.Sequence != int64(i+1) {
			t.Errorf("entry %d sequence = %d, want %d", i, entry.Sequence, i+1)
		}
	}
	if storage.Size() != 3 {
		t.Errorf("Size() = %d, want 3", storage.Size())
	}
}

func TestMemoryStorage_AppendCopiesEntry(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()

	ctx := context.Background()
	entry := &audit.Entry{
		ID:             "id-1",
		EvaluationID:   "eval-1",
		OrganizationID: "org-1",
		Rule:           "time_of_day",
		Outcome:        audit.OutcomePass,
		MaskedPhone:    "+*******4567",
		OccurredAt:     time.Now().UTC(),
		ChainHash:      "hash-1",
	}
	if err := storage.Append(ctx, entry); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	// Mutating the caller's entry must not reach the stored copy.
	entry.Outcome = audit.OutcomeBlock

	results, err := storage.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Query() returned %d entries, want 1", len(results))
	}
	if results[0].Outcome != audit.OutcomePass {
		t.Errorf("stored outcome = %q, want %q", results[0].Outcome, audit.OutcomePass)
	}
}

func TestMemoryStorage_QueryFilters(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()

	ctx := context.Background()
	seedEntries(t, storage, 12)

	tests := []struct {
		name  string
		query *audit.Query
		want  int
	}{
		{"by organization", &audit.Query{OrganizationID: "org-1"}, 6},
		{"by evaluation", &audit.Query{EvaluationID: "eval-1"}, 2},
		{"by rule", &audit.Query{Rule: "do_not_contact"}, 4},
		{"by outcome", &audit.Query{Outcome: audit.OutcomeBlock}, 4},
		{"by code", &audit.Query{Code: "DNC_LISTED"}, 4},
		{"no match", &audit.Query{Rule: "unknown"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := storage.Query(ctx, tt.query)
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}
			if len(results) != tt.want {
				t.Errorf("Query() returned %d entries, want %d", len(results), tt.want)
			}
		})
	}
}

func TestMemoryStorage_QueryPaginationAndOrder(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()

	ctx := context.Background()
	seedEntries(t, storage, 10)

	page, err := storage.Query(ctx, &audit.Query{Limit: 3, Offset: 4})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(page) != 3 || page[0].Sequence != 5 {
		t.Errorf("Query(limit=3, offset=4) = %d entries starting at %d, want 3 starting at 5",
			len(page), page[0].Sequence)
	}

	desc, err := storage.Query(ctx, &audit.Query{SortOrder: "desc", Limit: 2})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(desc) != 2 || desc[0].Sequence != 10 || desc[1].Sequence != 9 {
		t.Errorf("Query(desc, limit=2) sequences = %v, want [10 9]",
			[]int64{desc[0].Sequence, desc[1].Sequence})
	}

	// Offset past the end returns an empty slice, not an error.
	empty, err := storage.Query(ctx, &audit.Query{Offset: 100})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Query(offset=100) returned %d entries, want 0", len(empty))
	}
}

func TestMemoryStorage_QueryStream(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()

	ctx := context.Background()
	seedEntries(t, storage, 150)

	entries, errCh, err := storage.QueryStream(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("QueryStream() failed: %v", err)
	}

	count := 0
	for range entries {
		count++
	}
	if err := <-errCh; err != nil {
		t.Fatalf("QueryStream() error = %v", err)
	}
	if count != 150 {
		t.Errorf("QueryStream() yielded %d entries, want 150", count)
	}
}

func TestMemoryStorage_CountAndLastChainHash(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()

	ctx := context.Background()

	hash, err := storage.LastChainHash(ctx)
	if err != nil {
		t.Fatalf("LastChainHash() failed: %v", err)
	}
	if hash != "" {
		t.Errorf("LastChainHash() on empty storage = %q, want empty", hash)
	}

	seeded := seedEntries(t, storage, 4)

	count, err := storage.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 4 {
		t.Errorf("Count() = %d, want 4", count)
	}

	hash, err = storage.LastChainHash(ctx)
	if err != nil {
		t.Fatalf("LastChainHash() failed: %v", err)
	}
	if hash != seeded[3].ChainHash {
		t.Errorf("LastChainHash() = %q, want %q", hash, seeded[3].ChainHash)
	}
}

func TestMemoryStorage_ConcurrentAppend(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()

	ctx := context.Background()
	const writers = 10
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				entry := &audit.Entry{
					ID:             fmt.Sprintf("w%d-e%d", w, i),
					EvaluationID:   "eval-concurrent",
					OrganizationID: "org-1",
					Rule:           "time_of_day",
					Outcome:        audit.OutcomePass,
					MaskedPhone:    "+*******4567",
					OccurredAt:     time.Now().UTC(),
				}
				if err := storage.Append(ctx, entry); err != nil {
					t.Errorf("Append() failed: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if storage.Size() != writers*perWriter {
		t.Errorf("Size() = %d, want %d", storage.Size(), writers*perWriter)
	}

	// Sequences must be dense and unique.
	count, err := storage.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != int64(writers*perWriter) {
		t.Errorf("Count() = %d, want %d", count, writers*perWriter)
	}
}

func TestMemoryStorage_Clear(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()

	seedEntries(t, storage, 5)
	storage.Clear()

	if storage.Size() != 0 {
		t.Errorf("Size() after Clear() = %d, want 0", storage.Size())
	}
}
