package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	var cfg Config
	ApplyDefaults(&cfg)
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithRequestTimeout sets the per-request handler timeout.
func (b *ConfigBuilder) WithRequestTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Server.RequestTimeout = d
	return b
}

// WithEvaluationTimeout sets the engine evaluation timeout.
func (b *ConfigBuilder) WithEvaluationTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Engine.EvaluationTimeout = d
	return b
}

// WithCallingWindow sets the permitted local calling window hours.
func (b *ConfigBuilder) WithCallingWindow(start, end int) *ConfigBuilder {
	b.cfg.Engine.CallingWindowStart = start
	b.cfg.Engine.CallingWindowEnd = end
	return b
}

// WithFrequencyCap sets the default frequency cap.
func (b *ConfigBuilder) WithFrequencyCap(limit int) *ConfigBuilder {
	b.cfg.Engine.FrequencyCap = limit
	return b
}

// WithOrgCap adds a per-organization frequency cap override.
func (b *ConfigBuilder) WithOrgCap(orgID string, limit int) *ConfigBuilder {
	if b.cfg.Engine.FrequencyCapByOrg == nil {
		b.cfg.Engine.FrequencyCapByOrg = make(map[string]int)
	}
	b.cfg.Engine.FrequencyCapByOrg[orgID] = limit
	return b
}

// WithAuditPath sets the audit record database path.
func (b *ConfigBuilder) WithAuditPath(path string) *ConfigBuilder {
	b.cfg.Audit.SQLite.Path = path
	return b
}

// WithAccountsPath sets the account replica database path.
func (b *ConfigBuilder) WithAccountsPath(path string) *ConfigBuilder {
	b.cfg.Sources.Accounts.Path = path
	return b
}

// WithHistoryPath sets the attempt log database path.
func (b *ConfigBuilder) WithHistoryPath(path string) *ConfigBuilder {
	b.cfg.Sources.History.Path = path
	return b
}

// WithRetentionDays sets the attempt log retention period.
func (b *ConfigBuilder) WithRetentionDays(days int) *ConfigBuilder {
	b.cfg.Sources.History.Retention.Days = days
	return b
}

// WithDNCSnapshot sets the suppression snapshot path and defaults the
// refresh schedule the way ApplyDefaults would.
func (b *ConfigBuilder) WithDNCSnapshot(path string) *ConfigBuilder {
	b.cfg.Sources.DNC.SnapshotPath = path
	if b.cfg.Sources.DNC.RefreshSchedule == "" {
		b.cfg.Sources.DNC.RefreshSchedule = DefaultDNCRefreshSchedule
	}
	return b
}

// WithJurisdictionTable sets the jurisdiction table path.
func (b *ConfigBuilder) WithJurisdictionTable(path string) *ConfigBuilder {
	b.cfg.Sources.Jurisdiction.Path = path
	return b
}

// WithDefaultZone sets the fallback timezone for unresolvable numbers.
func (b *ConfigBuilder) WithDefaultZone(zone string) *ConfigBuilder {
	b.cfg.Sources.Timezone.DefaultZone = zone
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetricsEnabled sets whether metrics are enabled.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = enabled
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
// This is useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
