package history

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store with in-memory storage. Attempts do not
// survive restarts, so it is suitable for development and testing only.
type MemoryStore struct {
	attempts []*Attempt
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory attempt log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		attempts: make([]*Attempt, 0),
	}
}

// Record stores a contact attempt in memory.
func (m *MemoryStore) Record(_ context.Context, attempt *Attempt) error {
	if attempt == nil {
		return fmt.Errorf("attempt cannot be nil")
	}
	if err := attempt.Validate(); err != nil {
		return fmt.Errorf("invalid attempt: %w", err)
	}

	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	if attempt.OccurredAt.IsZero() {
		attempt.OccurredAt = time.Now().UTC()
	}
	attempt.Connected = attempt.Disposition == DispositionConnected

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *attempt
	m.attempts = append(m.attempts, &stored)
	return nil
}

// CountAttempts returns the number of attempts to the target phone since
// the given time.
func (m *MemoryStore) CountAttempts(_ context.Context, orgID, phone string, since time.Time, connectedOnly bool) (int, error) {
	if orgID == "" {
		return 0, fmt.Errorf("organization id cannot be empty")
	}
	if phone == "" {
		return 0, fmt.Errorf("phone number cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, a := range m.attempts {
		if a.OrganizationID != orgID || a.PhoneNumber != phone {
			continue
		}
		if a.OccurredAt.Before(since) {
			continue
		}
		if connectedOnly && !a.Connected {
			continue
		}
		count++
	}

	return count, nil
}

// Recent returns the most recent attempts for a target, newest first.
// A non-positive limit returns up to 50 attempts.
func (m *MemoryStore) Recent(_ context.Context, orgID, phone string, limit int) ([]*Attempt, error) {
	if orgID == "" {
		return nil, fmt.Errorf("organization id cannot be empty")
	}
	if phone == "" {
		return nil, fmt.Errorf("phone number cannot be empty")
	}
	if limit <= 0 {
		limit = 50
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*Attempt
	for _, a := range m.attempts {
		if a.OrganizationID != orgID || a.PhoneNumber != phone {
			continue
		}
		copied := *a
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

// Prune deletes attempts older than the cutoff and returns how many were
// removed.
func (m *MemoryStore) Prune(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.attempts[:0]
	var deleted int64
	for _, a := range m.attempts {
		if a.OccurredAt.Before(olderThan) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	m.attempts = kept

	return deleted, nil
}

// Close releases any resources. It is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// Size returns the number of stored attempts. Intended for tests.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.attempts)
}

// Clear removes all stored attempts. Intended for tests.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = m.attempts[:0]
}
