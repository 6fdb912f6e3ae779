package config

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// global holds the process-wide configuration once Initialize succeeds.
var global atomic.Pointer[Config]

// initMu serializes Initialize so concurrent callers cannot race two
// loads of the same file.
var initMu sync.Mutex

// Initialize loads configuration from path, applies environment
// overrides, and installs the result as the process-wide configuration.
// The first successful call wins; later calls are no-ops. A failed call
// installs nothing, so startup can retry with a corrected path.
func Initialize(path string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if global.Load() != nil {
		return nil
	}

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	global.Store(cfg)
	return nil
}

// GetConfig returns the process-wide configuration, or nil before a
// successful Initialize. Prefer passing *Config explicitly; the
// singleton exists for the command entry points.
func GetConfig() *Config {
	return global.Load()
}

// SetConfig replaces the process-wide configuration. Intended for
// tests.
func SetConfig(cfg *Config) {
	global.Store(cfg)
}

// resetGlobalConfig clears the singleton so tests can exercise
// Initialize repeatedly.
func resetGlobalConfig() {
	global.Store(nil)
}
