// Package jurisdiction serves per-jurisdiction regulatory parameters to
// the warning rules. The table is small and ships as a YAML file, so
// the store keeps it entirely in memory and swaps it atomically on
// reload. A jurisdiction missing from the table gets zero-valued rules,
// meaning no notice requirement and no enforceability limit.
package jurisdiction

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"veritel-hq/dialguard/pkg/clearance"
)

// Entry is the regulatory parameter set for one jurisdiction.
type Entry struct {
	// ConsentNoticeRequired marks jurisdictions with enhanced disclosure
	// requirements, such as dual-party consent states.
	ConsentNoticeRequired bool `yaml:"consent_notice_required"`

	// ConsentNoticeText is the disclosure text agents must deliver.
	ConsentNoticeText string `yaml:"consent_notice_text"`

	// ClaimEnforceabilityYears is the claim age in years beyond which
	// collection is no longer judicially enforceable. Zero means no
	// limit.
	ClaimEnforceabilityYears int `yaml:"claim_enforceability_years"`
}

// Snapshot is one complete jurisdiction table as loaded from YAML.
type Snapshot struct {
	// Version identifies the table revision for operational visibility.
	Version string `yaml:"version"`

	// Jurisdictions maps jurisdiction codes to their parameters.
	Jurisdictions map[string]Entry `yaml:"jurisdictions"`
}

// normalize canonicalizes the snapshot in place. Codes are uppercased
// and validated; any invalid entry fails the whole snapshot so a reload
// never half-applies.
func (s *Snapshot) normalize() error {
	normalized := make(map[string]Entry, len(s.Jurisdictions))
	for code, entry := range s.Jurisdictions {
		canonical := strings.ToUpper(strings.TrimSpace(code))
		if len(canonical) != 2 {
			return fmt.Errorf("invalid jurisdiction code %q: must be two letters", code)
		}
		for _, r := range canonical {
			if r < 'A' || r > 'Z' {
				return fmt.Errorf("invalid jurisdiction code %q: must be two letters", code)
			}
		}
		if _, exists := normalized[canonical]; exists {
			return fmt.Errorf("duplicate jurisdiction code %q", canonical)
		}
		if entry.ClaimEnforceabilityYears < 0 {
			return fmt.Errorf("jurisdiction %s: claim_enforceability_years cannot be negative", canonical)
		}
		normalized[canonical] = entry
	}
	s.Jurisdictions = normalized
	return nil
}

// rules converts an entry to the shape the clearance rules consume.
func (e Entry) rules() clearance.JurisdictionRules {
	return clearance.JurisdictionRules{
		ConsentNoticeRequired:    e.ConsentNoticeRequired,
		ConsentNoticeText:        e.ConsentNoticeText,
		ClaimEnforceabilityYears: e.ClaimEnforceabilityYears,
	}
}

// LoadSnapshotFile reads and normalizes a jurisdiction table from a
// YAML file.
func LoadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading jurisdiction table: %w", err)
	}

	var snapshot Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing jurisdiction table: %w", err)
	}

	if err := snapshot.normalize(); err != nil {
		return nil, fmt.Errorf("invalid jurisdiction table: %w", err)
	}

	return &snapshot, nil
}
