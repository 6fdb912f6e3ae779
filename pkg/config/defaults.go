package config

import (
	"time"

	"veritel-hq/dialguard/pkg/clearance"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 15 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Audit defaults
	DefaultAuditSQLitePath         = "data/audit.db"
	DefaultAuditSQLiteMaxOpenConns = 10
	DefaultAuditSQLiteMaxIdleConns = 5
	DefaultAuditSQLiteWALMode      = true
	DefaultAuditSQLiteBusyTimeout  = 5 * time.Second
	DefaultAuditWriteTimeout       = 5 * time.Second
	DefaultAuditQueryDefaultLimit  = 100
	DefaultAuditQueryMaxLimit      = 10000
	DefaultAuditExportJSONPretty   = true
	DefaultAuditExportCSVHeader    = true

	// Source defaults
	DefaultAccountsPath              = "data/accounts.db"
	DefaultAccountsMaxOpenConns      = 10
	DefaultAccountsMaxIdleConns      = 5
	DefaultAccountsBusyTimeout       = 5 * time.Second
	DefaultDNCPath                   = "data/dnc.db"
	DefaultDNCRefreshSchedule        = "0 * * * *"
	DefaultDNCCacheSize              = 4096
	DefaultDNCBloomFPRate            = 0.001
	DefaultHistoryPath               = "data/attempts.db"
	DefaultHistoryCheckpointInterval = 5 * time.Minute
	DefaultHistoryRetentionDays      = 90
	DefaultHistoryRetentionSchedule  = "0 3 * * *"
	DefaultTimezoneCacheSize         = 256
	DefaultJurisdictionWatch         = true

	// Registry defaults
	DefaultRegistryWatch = true

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultLoggingRedactPhone = true
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "veritel"
	DefaultMetricsSubsystem   = "dialguard"
	DefaultLivenessPath       = "/healthz"
	DefaultReadinessPath      = "/readyz"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Engine defaults come from the engine package so the YAML shape
	// and the runtime defaults cannot drift.
	applyEngineDefaults(&cfg.Engine)

	// Registry defaults
	if !cfg.Registry.Watch {
		cfg.Registry.Watch = DefaultRegistryWatch
	}

	// Audit defaults. For bool fields a zero value cannot be told apart
	// from an explicit false, so the true-defaults always reapply;
	// turning one off goes through an environment override.
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.Audit.SQLite.MaxOpenConns == 0 {
		cfg.Audit.SQLite.MaxOpenConns = DefaultAuditSQLiteMaxOpenConns
	}
	if cfg.Audit.SQLite.MaxIdleConns == 0 {
		cfg.Audit.SQLite.MaxIdleConns = DefaultAuditSQLiteMaxIdleConns
	}
	if !cfg.Audit.SQLite.WALMode {
		cfg.Audit.SQLite.WALMode = DefaultAuditSQLiteWALMode
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultAuditSQLiteBusyTimeout
	}
	if cfg.Audit.Recorder.WriteTimeout == 0 {
		cfg.Audit.Recorder.WriteTimeout = DefaultAuditWriteTimeout
	}
	if cfg.Audit.Query.DefaultLimit == 0 {
		cfg.Audit.Query.DefaultLimit = DefaultAuditQueryDefaultLimit
	}
	if cfg.Audit.Query.MaxLimit == 0 {
		cfg.Audit.Query.MaxLimit = DefaultAuditQueryMaxLimit
	}
	if !cfg.Audit.Export.JSONPretty {
		cfg.Audit.Export.JSONPretty = DefaultAuditExportJSONPretty
	}
	if !cfg.Audit.Export.CSVIncludeHeader {
		cfg.Audit.Export.CSVIncludeHeader = DefaultAuditExportCSVHeader
	}

	// Source defaults
	if cfg.Sources.Accounts.Path == "" {
		cfg.Sources.Accounts.Path = DefaultAccountsPath
	}
	if cfg.Sources.Accounts.MaxOpenConns == 0 {
		cfg.Sources.Accounts.MaxOpenConns = DefaultAccountsMaxOpenConns
	}
	if cfg.Sources.Accounts.MaxIdleConns == 0 {
		cfg.Sources.Accounts.MaxIdleConns = DefaultAccountsMaxIdleConns
	}
	if cfg.Sources.Accounts.BusyTimeout == 0 {
		cfg.Sources.Accounts.BusyTimeout = DefaultAccountsBusyTimeout
	}
	if cfg.Sources.DNC.Path == "" {
		cfg.Sources.DNC.Path = DefaultDNCPath
	}
	if cfg.Sources.DNC.RefreshSchedule == "" && cfg.Sources.DNC.SnapshotPath != "" {
		cfg.Sources.DNC.RefreshSchedule = DefaultDNCRefreshSchedule
	}
	if cfg.Sources.DNC.CacheSize == 0 {
		cfg.Sources.DNC.CacheSize = DefaultDNCCacheSize
	}
	if cfg.Sources.DNC.BloomFPRate == 0 {
		cfg.Sources.DNC.BloomFPRate = DefaultDNCBloomFPRate
	}
	if cfg.Sources.History.Path == "" {
		cfg.Sources.History.Path = DefaultHistoryPath
	}
	if cfg.Sources.History.CheckpointInterval == 0 {
		cfg.Sources.History.CheckpointInterval = DefaultHistoryCheckpointInterval
	}
	if cfg.Sources.History.Retention.Days == 0 {
		cfg.Sources.History.Retention.Days = DefaultHistoryRetentionDays
	}
	if cfg.Sources.History.Retention.Schedule == "" {
		cfg.Sources.History.Retention.Schedule = DefaultHistoryRetentionSchedule
	}
	if cfg.Sources.Timezone.CacheSize == 0 {
		cfg.Sources.Timezone.CacheSize = DefaultTimezoneCacheSize
	}
	if !cfg.Sources.Jurisdiction.Watch {
		cfg.Sources.Jurisdiction.Watch = DefaultJurisdictionWatch
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if !cfg.Telemetry.Logging.RedactPhoneNumbers {
		cfg.Telemetry.Logging.RedactPhoneNumbers = DefaultLoggingRedactPhone
	}
	if !cfg.Telemetry.Metrics.Enabled {
		cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
}

// applyEngineDefaults fills zero-valued engine fields from the engine
// package defaults.
func applyEngineDefaults(e *EngineConfig) {
	defaults := clearance.DefaultEngineConfig()
	if e.EvaluationTimeout == 0 {
		e.EvaluationTimeout = defaults.EvaluationTimeout
	}
	if e.SourceTimeout == 0 {
		e.SourceTimeout = defaults.SourceTimeout
	}
	if e.LockWait == 0 {
		e.LockWait = defaults.LockWait
	}
	if e.ReservationTTL == 0 {
		e.ReservationTTL = defaults.ReservationTTL
	}
	if e.CallingWindowStart == 0 && e.CallingWindowEnd == 0 {
		e.CallingWindowStart = defaults.CallingWindowStart
		e.CallingWindowEnd = defaults.CallingWindowEnd
	}
	if e.FrequencyCap == 0 {
		e.FrequencyCap = defaults.FrequencyCap
	}
	if e.FrequencyWindow == 0 {
		e.FrequencyWindow = defaults.FrequencyWindow
	}
	if e.CooldownWindow == 0 {
		e.CooldownWindow = defaults.CooldownWindow
	}
}
