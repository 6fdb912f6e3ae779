package config

import (
	"time"

	"veritel-hq/dialguard/pkg/clearance"
)

// Config is the root configuration structure for DialGuard. It contains
// all configuration sections for the HTTP server, the decision engine,
// the audit record, the data sources, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen
	// address, timeouts, and header limits.
	Server ServerConfig `yaml:"server"`

	// Engine contains decision engine configuration: the calling
	// window, frequency and cooldown windows, and evaluation timeouts.
	Engine EngineConfig `yaml:"engine"`

	// Registry contains rule registry configuration: the rule order
	// file and whether to watch it for changes.
	Registry RegistryConfig `yaml:"registry"`

	// Audit contains configuration for the audit record backend,
	// recorder, queries, and exports.
	Audit AuditConfig `yaml:"audit"`

	// Sources contains configuration for the data sources the rules
	// consult: the account replica, suppression registry, attempt
	// history, timezone resolution, and jurisdiction table.
	Sources SourcesConfig `yaml:"sources"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address" validate:"required"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"min=0"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"min=0"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout" validate:"min=0"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before forcing exit.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"min=0"`

	// RequestTimeout bounds each request's handler. It should exceed
	// the engine's evaluation timeout so fail-closed verdicts are
	// returned as responses rather than cut off mid-write.
	// Default: 15s
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"min=0"`

	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes" validate:"min=0"`
}

// EngineConfig is the YAML shape of the decision engine configuration.
type EngineConfig struct {
	// EvaluationTimeout bounds one whole evaluation.
	// Default: 10s
	EvaluationTimeout time.Duration `yaml:"evaluation_timeout"`

	// SourceTimeout bounds each individual rule evaluation.
	// Default: 2s
	SourceTimeout time.Duration `yaml:"source_timeout"`

	// LockWait bounds the wait for the per-target evaluation lock.
	// Default: 2s
	LockWait time.Duration `yaml:"lock_wait"`

	// ReservationTTL is how long an allow-reservation counts against
	// the frequency cap before it lapses unsettled.
	// Default: 5m
	ReservationTTL time.Duration `yaml:"reservation_ttl"`

	// CallingWindowStart is the first permitted local hour (inclusive).
	// Default: 8
	CallingWindowStart int `yaml:"calling_window_start"`

	// CallingWindowEnd is the first local hour past the window.
	// Default: 21
	CallingWindowEnd int `yaml:"calling_window_end"`

	// FrequencyCap is the maximum attempts per target in the trailing
	// frequency window.
	// Default: 7
	FrequencyCap int `yaml:"frequency_cap"`

	// FrequencyCapByOrg overrides FrequencyCap per organization.
	FrequencyCapByOrg map[string]int `yaml:"frequency_cap_by_org"`

	// FrequencyWindow is the trailing window for the frequency cap.
	// Default: 168h (7 days)
	FrequencyWindow time.Duration `yaml:"frequency_window"`

	// CooldownWindow is the trailing window in which a connected
	// attempt suppresses further contact.
	// Default: 168h (7 days)
	CooldownWindow time.Duration `yaml:"cooldown_window"`
}

// ToEngine converts the YAML shape into the engine's runtime
// configuration.
func (e *EngineConfig) ToEngine() *clearance.EngineConfig {
	return &clearance.EngineConfig{
		EvaluationTimeout:  e.EvaluationTimeout,
		SourceTimeout:      e.SourceTimeout,
		LockWait:           e.LockWait,
		ReservationTTL:     e.ReservationTTL,
		CallingWindowStart: e.CallingWindowStart,
		CallingWindowEnd:   e.CallingWindowEnd,
		FrequencyCap:       e.FrequencyCap,
		FrequencyCapByOrg:  e.FrequencyCapByOrg,
		FrequencyWindow:    e.FrequencyWindow,
		CooldownWindow:     e.CooldownWindow,
	}
}

// RegistryConfig contains configuration for the rule registry.
type RegistryConfig struct {
	// OrderPath is a YAML file listing the rule ids in evaluation
	// order. Empty keeps the built-in default order. The file must be
	// an exact permutation of the registered rule ids.
	OrderPath string `yaml:"order_path"`

	// Watch enables automatic reordering when the order file changes.
	// Default: true
	Watch bool `yaml:"watch"`
}

// AuditConfig contains configuration for the audit record.
type AuditConfig struct {
	// SQLite contains SQLite backend configuration.
	SQLite AuditSQLiteConfig `yaml:"sqlite"`

	// Recorder contains audit recorder configuration.
	Recorder AuditRecorderConfig `yaml:"recorder"`

	// Query contains query configuration.
	Query AuditQueryConfig `yaml:"query"`

	// Export contains export configuration.
	Export AuditExportConfig `yaml:"export"`
}

// AuditSQLiteConfig contains SQLite backend configuration for the audit
// record.
type AuditSQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/audit.db"
	Path string `yaml:"path" validate:"required"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns" validate:"min=0"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns" validate:"min=0"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" validate:"min=0"`
}

// AuditRecorderConfig contains audit recorder configuration.
type AuditRecorderConfig struct {
	// WriteTimeout is the timeout for writing one audit entry. Writes
	// are synchronous: the engine does not count a rule as evaluated
	// until its entry is durable.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"min=0"`
}

// AuditQueryConfig contains query configuration.
type AuditQueryConfig struct {
	// DefaultLimit is the number of entries returned when a query does
	// not specify one.
	// Default: 100
	DefaultLimit int `yaml:"default_limit" validate:"min=0"`

	// MaxLimit is the maximum number of entries one query may return.
	// Default: 10000
	MaxLimit int `yaml:"max_limit" validate:"min=0"`
}

// AuditExportConfig contains export configuration.
type AuditExportConfig struct {
	// JSONPretty enables pretty-printing for JSON exports.
	// Default: true
	JSONPretty bool `yaml:"json_pretty"`

	// CSVIncludeHeader includes a header row in CSV exports.
	// Default: true
	CSVIncludeHeader bool `yaml:"csv_include_header"`
}

// SourcesConfig contains configuration for the rule data sources.
type SourcesConfig struct {
	// Accounts configures the local account replica consulted by the
	// flag, consent, and legal hold rules.
	Accounts AccountsConfig `yaml:"accounts"`

	// DNC configures the do-not-contact suppression registry.
	DNC DNCConfig `yaml:"dnc"`

	// History configures the contact attempt log.
	History HistoryConfig `yaml:"history"`

	// Timezone configures target timezone resolution.
	Timezone TimezoneConfig `yaml:"timezone"`

	// Jurisdiction configures the per-jurisdiction rules table.
	Jurisdiction JurisdictionConfig `yaml:"jurisdiction"`
}

// AccountsConfig contains configuration for the account replica.
type AccountsConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/accounts.db"
	Path string `yaml:"path" validate:"required"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns" validate:"min=0"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns" validate:"min=0"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" validate:"min=0"`
}

// DNCConfig contains configuration for the suppression registry.
type DNCConfig struct {
	// Path is the file path for the registry database.
	// Default: "data/dnc.db"
	Path string `yaml:"path" validate:"required"`

	// SnapshotPath is the YAML suppression snapshot to load. Empty
	// disables snapshot loading, serving whatever the database holds.
	SnapshotPath string `yaml:"snapshot_path"`

	// RefreshSchedule is a cron expression for reloading the snapshot.
	// Empty means the snapshot is loaded once at startup.
	// Default: "0 * * * *" (hourly)
	RefreshSchedule string `yaml:"refresh_schedule"`

	// CacheSize bounds the lookup cache.
	// Default: 4096
	CacheSize int `yaml:"cache_size" validate:"min=0"`

	// BloomFPRate is the bloom filter false positive rate.
	// Default: 0.001
	BloomFPRate float64 `yaml:"bloom_fp_rate" validate:"min=0,max=1"`
}

// HistoryConfig contains configuration for the attempt log.
type HistoryConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/attempts.db"
	Path string `yaml:"path" validate:"required"`

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5m
	CheckpointInterval time.Duration `yaml:"checkpoint_interval" validate:"min=0"`

	// Retention configures attempt log pruning.
	Retention HistoryRetentionConfig `yaml:"retention"`
}

// HistoryRetentionConfig contains attempt log retention configuration.
type HistoryRetentionConfig struct {
	// Days is the number of days to retain attempts. 0 keeps attempts
	// forever. Must stay above the frequency and cooldown windows or
	// those rules will undercount.
	// Default: 90
	Days int `yaml:"days" validate:"min=0"`

	// Schedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`
}

// TimezoneConfig contains configuration for timezone resolution.
type TimezoneConfig struct {
	// DefaultZone is an IANA zone used when a number cannot be
	// resolved. Empty means unresolvable numbers fail the evaluation
	// closed.
	DefaultZone string `yaml:"default_zone"`

	// Overrides maps area codes to IANA zone names.
	Overrides map[string]string `yaml:"overrides"`

	// CacheSize bounds the loaded-location cache.
	// Default: 256
	CacheSize int `yaml:"cache_size" validate:"min=0"`
}

// JurisdictionConfig contains configuration for the jurisdiction table.
type JurisdictionConfig struct {
	// Path is the YAML jurisdiction table to load. Empty serves
	// zero-valued rules for every jurisdiction.
	Path string `yaml:"path"`

	// Watch enables automatic reloading when the table file changes.
	// Default: true
	Watch bool `yaml:"watch"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Health contains health check endpoint configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPhoneNumbers masks phone numbers in log attributes. Raw
	// numbers never belong in logs; the audit record stores them
	// masked for the same reason.
	// Default: true
	RedactPhoneNumbers bool `yaml:"redact_phone_numbers"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "veritel"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "dialguard"
	Subsystem string `yaml:"subsystem"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/healthz"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/readyz"
	ReadinessPath string `yaml:"readiness_path"`
}
