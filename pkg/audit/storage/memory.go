package storage

import (
	"context"
	"sync"

	"veritel-hq/dialguard/pkg/audit"
)

// MemoryStorage implements the Storage interface using an in-memory
// slice. Entries are held in append order, mirroring the sequence
// semantics of the SQLite backend. This implementation is intended for
// testing only and should not be used in production.
type MemoryStorage struct {
	entries []*audit.Entry
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Append persists an entry to memory and assigns its sequence number.
func (s *MemoryStorage) Append(ctx context.Context, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Sequence = int64(len(s.entries)) + 1

	// Store a copy to avoid mutation
	entryCopy := *entry
	s.entries = append(s.entries, &entryCopy)

	return nil
}

// Query retrieves entries matching the query filters, in sequence order.
// A zero Limit defaults to 100, matching the SQLite backend.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filter(query)

	// Apply pagination
	start := query.Offset
	if start > len(matched) {
		return []*audit.Entry{}, nil
	}

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], nil
}

// QueryStream returns a channel of entries for memory-efficient
// streaming. A zero Limit streams every matching entry.
// The channels are closed when the query completes or errors.
func (s *MemoryStorage) QueryStream(ctx context.Context, query *audit.Query) (<-chan *audit.Entry, <-chan error, error) {
	entriesCh := make(chan *audit.Entry, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(entriesCh)
		defer close(errCh)

		s.mu.RLock()
		matched := s.filter(query)
		s.mu.RUnlock()

		sent := 0
		for i, entry := range matched {
			if i < query.Offset {
				continue
			}
			if query.Limit > 0 && sent >= query.Limit {
				break
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case entriesCh <- entry:
				sent++
			}
		}
	}()

	return entriesCh, errCh, nil
}

// Count returns the number of entries matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, entry := range s.entries {
		if s.matchesQuery(entry, query) {
			count++
		}
	}

	return count, nil
}

// LastChainHash returns the chain hash of the most recent entry, or an
// empty string when the record is empty.
func (s *MemoryStorage) LastChainHash(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return "", nil
	}
	return s.entries[len(s.entries)-1].ChainHash, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return nil
}

// filter returns copies of all matching entries in the requested order.
// Callers must hold at least the read lock.
func (s *MemoryStorage) filter(query *audit.Query) []*audit.Entry {
	var matched []*audit.Entry
	for _, entry := range s.entries {
		if s.matchesQuery(entry, query) {
			entryCopy := *entry
			matched = append(matched, &entryCopy)
		}
	}

	if query.SortOrder == "desc" {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	return matched
}

// matchesQuery checks if an entry matches the query filters.
func (s *MemoryStorage) matchesQuery(entry *audit.Entry, query *audit.Query) bool {
	// Time range filter
	if query.StartTime != nil && entry.OccurredAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && entry.OccurredAt.After(*query.EndTime) {
		return false
	}

	// Evaluation filters
	if query.EvaluationID != "" && entry.EvaluationID != query.EvaluationID {
		return false
	}
	if query.OrganizationID != "" && entry.OrganizationID != query.OrganizationID {
		return false
	}

	// Decision filters
	if query.Rule != "" && entry.Rule != query.Rule {
		return false
	}
	if query.Outcome != "" && entry.Outcome != query.Outcome {
		return false
	}
	if query.Code != "" && entry.Code != query.Code {
		return false
	}

	return true
}

// Clear removes all entries from storage (for testing).
func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
}

// Size returns the number of entries in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
