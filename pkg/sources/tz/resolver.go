// Package tz resolves a target phone number to the target's local
// timezone. Resolution is by NANP area code against a static zone table,
// optionally corrected or extended through configuration.
//
// A number the resolver cannot place gets an error, not a guess. The
// calling window rule treats that error as a dependency failure, which
// fails the evaluation closed. An operator who prefers a fixed fallback
// zone over fail-closed can set Config.DefaultZone explicitly.
//
// Error messages name the area code only, never the full number, so
// they are safe to surface in audit reasons.
package tz

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Config configures the timezone resolver.
type Config struct {
	// DefaultZone is an IANA zone name used when a number cannot be
	// resolved. Empty means unresolvable numbers return an error.
	DefaultZone string `yaml:"default_zone"`

	// Overrides maps area codes to IANA zone names, replacing or
	// extending the built-in table.
	Overrides map[string]string `yaml:"overrides"`

	// CacheSize bounds the loaded-location cache. Default: 256.
	CacheSize int `yaml:"cache_size"`
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() *Config {
	return &Config{
		CacheSize: 256,
	}
}

// Resolver maps phone numbers to IANA timezones by area code.
type Resolver struct {
	zones       map[string]string
	cache       *lru.Cache[string, *time.Location]
	defaultZone *time.Location
}

// NewResolver creates a resolver from the built-in NANP table plus any
// configured overrides.
func NewResolver(config *Config) (*Resolver, error) {
	if config == nil {
		config = DefaultConfig()
	}

	size := config.CacheSize
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, *time.Location](size)
	if err != nil {
		return nil, fmt.Errorf("creating location cache: %w", err)
	}

	zones := make(map[string]string, len(nanpZones)+len(config.Overrides))
	for code, name := range nanpZones {
		zones[code] = name
	}
	for code, name := range config.Overrides {
		zones[code] = name
	}

	r := &Resolver{
		zones: zones,
		cache: cache,
	}

	if config.DefaultZone != "" {
		loc, err := time.LoadLocation(config.DefaultZone)
		if err != nil {
			return nil, fmt.Errorf("loading default zone %q: %w", config.DefaultZone, err)
		}
		r.defaultZone = loc
	}

	return r, nil
}

// Resolve returns the local timezone for a phone number. Numbers outside
// the NANP, non-geographic area codes, and unmapped area codes resolve
// to the configured default zone, or fail when none is configured.
func (r *Resolver) Resolve(ctx context.Context, phone string) (*time.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	code, err := AreaCode(phone)
	if err != nil {
		if r.defaultZone != nil {
			return r.defaultZone, nil
		}
		return nil, err
	}

	if loc, ok := r.cache.Get(code); ok {
		return loc, nil
	}

	name, ok := r.zones[code]
	if !ok {
		if r.defaultZone != nil {
			return r.defaultZone, nil
		}
		if nonGeographic[code] {
			return nil, fmt.Errorf("area code %s is non-geographic", code)
		}
		return nil, fmt.Errorf("no timezone mapping for area code %s", code)
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %s for area code %s: %w", name, code, err)
	}

	r.cache.Add(code, loc)
	return loc, nil
}

// AreaCode extracts the NANP area code from a normalized phone number.
// It accepts "+1XXXXXXXXXX", "1XXXXXXXXXX", and bare ten-digit forms.
func AreaCode(phone string) (string, error) {
	digits := strings.TrimPrefix(phone, "+")
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("phone number contains non-digit characters")
		}
	}

	switch {
	case len(digits) == 11 && digits[0] == '1':
		digits = digits[1:]
	case len(digits) == 10:
		// Already a national number.
	default:
		return "", fmt.Errorf("phone number is outside the north american numbering plan")
	}

	code := digits[:3]
	if code[0] < '2' {
		return "", fmt.Errorf("invalid area code %s", code)
	}
	return code, nil
}
