package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration produced by defaults alone, without
// reading any file. It is what a bare `dialguard run` starts with.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention DIALGUARD_SECTION_FIELD (e.g., DIALGUARD_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	// First load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format DIALGUARD_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("DIALGUARD_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("DIALGUARD_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("DIALGUARD_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("DIALGUARD_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("DIALGUARD_SERVER_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.RequestTimeout = d
		}
	}
	if val := os.Getenv("DIALGUARD_SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}

	// Engine overrides
	if val := os.Getenv("DIALGUARD_ENGINE_EVALUATION_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.EvaluationTimeout = d
		}
	}
	if val := os.Getenv("DIALGUARD_ENGINE_SOURCE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.SourceTimeout = d
		}
	}
	if val := os.Getenv("DIALGUARD_ENGINE_LOCK_WAIT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.LockWait = d
		}
	}
	if val := os.Getenv("DIALGUARD_ENGINE_RESERVATION_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.ReservationTTL = d
		}
	}
	if val := os.Getenv("DIALGUARD_ENGINE_CALLING_WINDOW_START"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.CallingWindowStart = i
		}
	}
	if val := os.Getenv("DIALGUARD_ENGINE_CALLING_WINDOW_END"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.CallingWindowEnd = i
		}
	}
	if val := os.Getenv("DIALGUARD_ENGINE_FREQUENCY_CAP"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.FrequencyCap = i
		}
	}
	if val := os.Getenv("DIALGUARD_ENGINE_FREQUENCY_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.FrequencyWindow = d
		}
	}
	if val := os.Getenv("DIALGUARD_ENGINE_COOLDOWN_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.CooldownWindow = d
		}
	}

	// Registry overrides
	if val := os.Getenv("DIALGUARD_REGISTRY_ORDER_PATH"); val != "" {
		cfg.Registry.OrderPath = val
	}
	if val := os.Getenv("DIALGUARD_REGISTRY_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Registry.Watch = b
		}
	}

	// Audit overrides
	if val := os.Getenv("DIALGUARD_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLite.Path = val
	}
	if val := os.Getenv("DIALGUARD_AUDIT_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Audit.Recorder.WriteTimeout = d
		}
	}

	// Source overrides
	if val := os.Getenv("DIALGUARD_SOURCES_ACCOUNTS_PATH"); val != "" {
		cfg.Sources.Accounts.Path = val
	}
	if val := os.Getenv("DIALGUARD_SOURCES_DNC_PATH"); val != "" {
		cfg.Sources.DNC.Path = val
	}
	if val := os.Getenv("DIALGUARD_SOURCES_DNC_SNAPSHOT_PATH"); val != "" {
		cfg.Sources.DNC.SnapshotPath = val
	}
	if val := os.Getenv("DIALGUARD_SOURCES_DNC_REFRESH_SCHEDULE"); val != "" {
		cfg.Sources.DNC.RefreshSchedule = val
	}
	if val := os.Getenv("DIALGUARD_SOURCES_HISTORY_PATH"); val != "" {
		cfg.Sources.History.Path = val
	}
	if val := os.Getenv("DIALGUARD_SOURCES_HISTORY_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Sources.History.Retention.Days = i
		}
	}
	if val := os.Getenv("DIALGUARD_SOURCES_TIMEZONE_DEFAULT_ZONE"); val != "" {
		cfg.Sources.Timezone.DefaultZone = val
	}
	if val := os.Getenv("DIALGUARD_SOURCES_JURISDICTION_PATH"); val != "" {
		cfg.Sources.Jurisdiction.Path = val
	}
	if val := os.Getenv("DIALGUARD_SOURCES_JURISDICTION_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Sources.Jurisdiction.Watch = b
		}
	}

	// Telemetry overrides
	if val := os.Getenv("DIALGUARD_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("DIALGUARD_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("DIALGUARD_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("DIALGUARD_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
