package jurisdiction

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"veritel-hq/dialguard/pkg/clearance"
)

// Store serves jurisdiction rules from an in-memory table with atomic
// replacement on reload.
type Store struct {
	mu      sync.RWMutex
	rules   map[string]clearance.JurisdictionRules
	version string
	updated time.Time
	logger  *slog.Logger
}

var _ clearance.JurisdictionStore = (*Store)(nil)

// NewStore creates an empty jurisdiction store. Until a table is
// loaded, every code resolves to zero-valued rules.
func NewStore() *Store {
	return &Store{
		rules:  make(map[string]clearance.JurisdictionRules),
		logger: slog.Default().With("component", "sources.jurisdiction"),
	}
}

// NewStoreFromFile creates a store and loads its initial table from a
// YAML file.
func NewStoreFromFile(path string) (*Store, error) {
	s := NewStore()
	if err := s.LoadFile(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Rules returns the regulatory parameters for a jurisdiction code. An
// unknown code returns zero-valued rules, never an error: the warning
// rules treat absence as no requirement.
func (s *Store) Rules(ctx context.Context, code string) (clearance.JurisdictionRules, error) {
	if err := ctx.Err(); err != nil {
		return clearance.JurisdictionRules{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules[strings.ToUpper(strings.TrimSpace(code))], nil
}

// LoadFile loads a jurisdiction table from a YAML file and replaces the
// current table. A failed load leaves the previous table serving.
func (s *Store) LoadFile(path string) error {
	snapshot, err := LoadSnapshotFile(path)
	if err != nil {
		return err
	}
	s.Replace(snapshot)
	return nil
}

// Replace swaps in a new jurisdiction table.
func (s *Store) Replace(snapshot *Snapshot) {
	next := make(map[string]clearance.JurisdictionRules, len(snapshot.Jurisdictions))
	for code, entry := range snapshot.Jurisdictions {
		next[code] = entry.rules()
	}

	s.mu.Lock()
	s.rules = next
	s.version = snapshot.Version
	s.updated = time.Now().UTC()
	s.mu.Unlock()

	s.logger.Info("jurisdiction table replaced",
		"version", snapshot.Version,
		"jurisdictions", len(next),
	)
}

// Size returns the number of jurisdictions in the current table.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Version returns the revision of the current table.
func (s *Store) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// UpdatedAt returns when the table was last replaced.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}
