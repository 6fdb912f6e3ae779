package clearance

import (
	"fmt"
	"time"
)

// EngineConfig contains configuration for the decision engine.
type EngineConfig struct {
	// EvaluationTimeout bounds one whole evaluation, including all
	// adapter calls and audit writes. Expiry routes to the fail-closed
	// boundary. Default: 10s.
	EvaluationTimeout time.Duration

	// SourceTimeout bounds each individual rule evaluation, including
	// its single adapter call. Default: 2s.
	SourceTimeout time.Duration

	// LockWait bounds how long an evaluation waits for the per-target
	// coordinator lock. Expiry is a dependency failure. Default: 2s.
	LockWait time.Duration

	// ReservationTTL is how long an allow-reservation counts against
	// the frequency cap before it lapses unsettled. Default: 5m.
	ReservationTTL time.Duration

	// CallingWindowStart and CallingWindowEnd bound the permitted local
	// calling window in whole hours. An attempt is permitted when the
	// target's local hour h satisfies start <= h < end.
	// Defaults: 8 and 21 (08:00-21:00 local).
	CallingWindowStart int
	CallingWindowEnd   int

	// FrequencyCap is the maximum number of attempts to one target in
	// the trailing FrequencyWindow. Default: 7.
	FrequencyCap int

	// FrequencyCapByOrg overrides FrequencyCap per organization.
	FrequencyCapByOrg map[string]int

	// FrequencyWindow is the trailing window for the frequency cap.
	// Default: 7 days.
	FrequencyWindow time.Duration

	// CooldownWindow is the trailing window in which a connected
	// attempt suppresses further contact. Default: 7 days.
	CooldownWindow time.Duration
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		EvaluationTimeout:  10 * time.Second,
		SourceTimeout:      2 * time.Second,
		LockWait:           2 * time.Second,
		ReservationTTL:     5 * time.Minute,
		CallingWindowStart: 8,
		CallingWindowEnd:   21,
		FrequencyCap:       7,
		FrequencyWindow:    7 * 24 * time.Hour,
		CooldownWindow:     7 * 24 * time.Hour,
	}
}

// CapFor returns the frequency cap for an organization, honoring any
// per-org override.
func (c *EngineConfig) CapFor(orgID string) int {
	if limit, ok := c.FrequencyCapByOrg[orgID]; ok {
		return limit
	}
	return c.FrequencyCap
}

// Validate validates the engine configuration.
func (c *EngineConfig) Validate() error {
	if c.EvaluationTimeout <= 0 {
		return fmt.Errorf("%w: evaluation timeout must be positive", ErrInvalidConfig)
	}
	if c.SourceTimeout <= 0 {
		return fmt.Errorf("%w: source timeout must be positive", ErrInvalidConfig)
	}
	if c.SourceTimeout > c.EvaluationTimeout {
		return fmt.Errorf("%w: source timeout cannot exceed evaluation timeout", ErrInvalidConfig)
	}
	if c.LockWait <= 0 {
		return fmt.Errorf("%w: lock wait must be positive", ErrInvalidConfig)
	}
	if c.ReservationTTL <= 0 {
		return fmt.Errorf("%w: reservation TTL must be positive", ErrInvalidConfig)
	}
	if c.CallingWindowStart < 0 || c.CallingWindowStart > 23 {
		return fmt.Errorf("%w: calling window start must be within 0-23", ErrInvalidConfig)
	}
	if c.CallingWindowEnd < 1 || c.CallingWindowEnd > 24 {
		return fmt.Errorf("%w: calling window end must be within 1-24", ErrInvalidConfig)
	}
	if c.CallingWindowStart >= c.CallingWindowEnd {
		return fmt.Errorf("%w: calling window start must precede end", ErrInvalidConfig)
	}
	if c.FrequencyCap <= 0 {
		return fmt.Errorf("%w: frequency cap must be positive", ErrInvalidConfig)
	}
	for org, limit := range c.FrequencyCapByOrg {
		if limit <= 0 {
			return fmt.Errorf("%w: frequency cap override for org %q must be positive", ErrInvalidConfig, org)
		}
	}
	if c.FrequencyWindow <= 0 {
		return fmt.Errorf("%w: frequency window must be positive", ErrInvalidConfig)
	}
	if c.CooldownWindow <= 0 {
		return fmt.Errorf("%w: cooldown window must be positive", ErrInvalidConfig)
	}
	return nil
}
