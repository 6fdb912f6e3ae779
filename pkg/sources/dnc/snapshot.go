package dnc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"veritel-hq/dialguard/pkg/clearance"
)

// Snapshot is one complete state of the suppression lists. Loading a
// snapshot replaces everything the registry previously held.
type Snapshot struct {
	// Version identifies the snapshot, typically the vendor's export
	// date.
	Version string `yaml:"version"`

	// Global lists numbers suppressed for every organization.
	Global []string `yaml:"global"`

	// Organizations maps an organization ID to its own suppressed
	// numbers.
	Organizations map[string][]string `yaml:"organizations"`
}

// TotalNumbers returns the number of entries across all lists.
func (s *Snapshot) TotalNumbers() int {
	total := len(s.Global)
	for _, numbers := range s.Organizations {
		total += len(numbers)
	}
	return total
}

// normalize canonicalizes every number in the snapshot to E.164 so that
// lookups against normalized request numbers match. A number that cannot
// be normalized fails the whole snapshot; a silently skipped entry would
// mean a suppressed target gets called.
func (s *Snapshot) normalize() error {
	for i, raw := range s.Global {
		phone, err := clearance.NormalizePhone(raw)
		if err != nil {
			return fmt.Errorf("global entry %d: %w", i, err)
		}
		s.Global[i] = phone
	}
	for orgID, numbers := range s.Organizations {
		for i, raw := range numbers {
			phone, err := clearance.NormalizePhone(raw)
			if err != nil {
				return fmt.Errorf("organization %s entry %d: %w", orgID, i, err)
			}
			numbers[i] = phone
		}
	}
	return nil
}

// LoadSnapshotFile reads and normalizes a YAML snapshot file.
func LoadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}

	var snapshot Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot file: %w", err)
	}

	if err := snapshot.normalize(); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}

	return &snapshot, nil
}
