package clearance

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry is the ordered list of rule descriptors. Order is data, not
// code flow: reordering the registry is a configuration change applied
// through SetOrder, never a code change.
//
// Registry is safe for concurrent use; evaluations read a snapshot while
// reorders swap atomically under the write lock.
type Registry struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewRegistry creates a registry from an ordered rule list. Every rule
// must have a unique id, a valid category, and a non-nil evaluator.
func NewRegistry(rules []Rule) (*Registry, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyRegistry
	}

	seen := make(map[RuleID]bool, len(rules))
	for i, rule := range rules {
		if rule.ID == "" {
			return nil, fmt.Errorf("rule at position %d has an empty id", i)
		}
		if seen[rule.ID] {
			return nil, fmt.Errorf("duplicate rule id %q", rule.ID)
		}
		seen[rule.ID] = true

		switch rule.Category {
		case CategoryBlocking, CategoryWarning:
		default:
			return nil, fmt.Errorf("rule %q has invalid category %q", rule.ID, rule.Category)
		}

		if rule.Evaluator == nil {
			return nil, fmt.Errorf("rule %q has no evaluator", rule.ID)
		}
	}

	r := &Registry{rules: make([]Rule, len(rules))}
	copy(r.rules, rules)
	return r, nil
}

// Rules returns a snapshot of the registry in evaluation order.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]Rule, len(r.rules))
	copy(rules, r.rules)
	return rules
}

// Order returns the current rule order.
func (r *Registry) Order() []RuleID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order := make([]RuleID, len(r.rules))
	for i, rule := range r.rules {
		order[i] = rule.ID
	}
	return order
}

// SetOrder reorders the registry. The new order must be an exact
// permutation of the registered rule ids; a partial or unknown order is
// rejected and the current order is kept.
func (r *Registry) SetOrder(order []RuleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(order) != len(r.rules) {
		return fmt.Errorf("order lists %d rules, registry has %d", len(order), len(r.rules))
	}

	byID := make(map[RuleID]Rule, len(r.rules))
	for _, rule := range r.rules {
		byID[rule.ID] = rule
	}

	reordered := make([]Rule, 0, len(order))
	seen := make(map[RuleID]bool, len(order))
	for _, id := range order {
		rule, ok := byID[id]
		if !ok {
			return fmt.Errorf("unknown rule id %q in order", id)
		}
		if seen[id] {
			return fmt.Errorf("duplicate rule id %q in order", id)
		}
		seen[id] = true
		reordered = append(reordered, rule)
	}

	r.rules = reordered
	return nil
}

// DefaultOrder returns the built-in rule order: the permanent and
// semi-permanent flags first, then the registry lookups, then the
// windowed history rules, then the warnings.
func DefaultOrder() []RuleID {
	return []RuleID{
		RulePermanentHold,
		RuleAttorneyRepresented,
		RuleBankruptcyActive,
		RuleConsentRevoked,
		RuleLegalHoldActive,
		RuleDoNotContact,
		RuleTimeOfDay,
		RuleFrequencyCap,
		RuleCooldownAfterContact,
		RuleJurisdictionConsentNotice,
		RuleClaimAgeExpired,
	}
}

// orderFile is the on-disk shape of a registry order file.
type orderFile struct {
	Rules []string `yaml:"rules"`
}

// LoadOrder reads a rule order from a YAML file of the form:
//
//	rules:
//	  - permanent_hold
//	  - attorney_represented
//	  ...
func LoadOrder(path string) ([]RuleID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule order file: %w", err)
	}

	var file orderFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rule order file %s: %w", path, err)
	}

	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rule order file %s lists no rules", path)
	}

	order := make([]RuleID, len(file.Rules))
	for i, id := range file.Rules {
		order[i] = RuleID(id)
	}
	return order, nil
}
