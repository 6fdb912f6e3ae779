package config

import (
	"testing"
	"time"

	"veritel-hq/dialguard/pkg/clearance"
)

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input Config
		check func(*testing.T, *Config)
	}{
		{
			name:  "empty config gets all defaults",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.ListenAddress != DefaultListenAddress {
					t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
				}
				if cfg.Server.ReadTimeout != DefaultReadTimeout {
					t.Errorf("expected read timeout %v, got %v", DefaultReadTimeout, cfg.Server.ReadTimeout)
				}
				if cfg.Server.RequestTimeout != DefaultRequestTimeout {
					t.Errorf("expected request timeout %v, got %v", DefaultRequestTimeout, cfg.Server.RequestTimeout)
				}
				if cfg.Server.MaxHeaderBytes != DefaultMaxHeaderBytes {
					t.Errorf("expected max header bytes %d, got %d", DefaultMaxHeaderBytes, cfg.Server.MaxHeaderBytes)
				}
				if cfg.Audit.SQLite.Path != DefaultAuditSQLitePath {
					t.Errorf("expected audit path %q, got %q", DefaultAuditSQLitePath, cfg.Audit.SQLite.Path)
				}
				if cfg.Audit.Recorder.WriteTimeout != DefaultAuditWriteTimeout {
					t.Errorf("expected audit write timeout %v, got %v", DefaultAuditWriteTimeout, cfg.Audit.Recorder.WriteTimeout)
				}
				if cfg.Audit.Query.DefaultLimit != DefaultAuditQueryDefaultLimit {
					t.Errorf("expected query default limit %d, got %d", DefaultAuditQueryDefaultLimit, cfg.Audit.Query.DefaultLimit)
				}
				if cfg.Sources.Accounts.Path != DefaultAccountsPath {
					t.Errorf("expected accounts path %q, got %q", DefaultAccountsPath, cfg.Sources.Accounts.Path)
				}
				if cfg.Sources.DNC.Path != DefaultDNCPath {
					t.Errorf("expected dnc path %q, got %q", DefaultDNCPath, cfg.Sources.DNC.Path)
				}
				if cfg.Sources.DNC.CacheSize != DefaultDNCCacheSize {
					t.Errorf("expected dnc cache size %d, got %d", DefaultDNCCacheSize, cfg.Sources.DNC.CacheSize)
				}
				if cfg.Sources.DNC.BloomFPRate != DefaultDNCBloomFPRate {
					t.Errorf("expected bloom fp rate %v, got %v", DefaultDNCBloomFPRate, cfg.Sources.DNC.BloomFPRate)
				}
				if cfg.Sources.History.Path != DefaultHistoryPath {
					t.Errorf("expected history path %q, got %q", DefaultHistoryPath, cfg.Sources.History.Path)
				}
				if cfg.Sources.History.Retention.Days != DefaultHistoryRetentionDays {
					t.Errorf("expected retention days %d, got %d", DefaultHistoryRetentionDays, cfg.Sources.History.Retention.Days)
				}
				if cfg.Sources.History.Retention.Schedule != DefaultHistoryRetentionSchedule {
					t.Errorf("expected retention schedule %q, got %q", DefaultHistoryRetentionSchedule, cfg.Sources.History.Retention.Schedule)
				}
				if cfg.Sources.Timezone.CacheSize != DefaultTimezoneCacheSize {
					t.Errorf("expected timezone cache size %d, got %d", DefaultTimezoneCacheSize, cfg.Sources.Timezone.CacheSize)
				}
				if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
					t.Errorf("expected logging level %q, got %q", DefaultLoggingLevel, cfg.Telemetry.Logging.Level)
				}
				if cfg.Telemetry.Logging.Format != DefaultLoggingFormat {
					t.Errorf("expected logging format %q, got %q", DefaultLoggingFormat, cfg.Telemetry.Logging.Format)
				}
				if cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
					t.Errorf("expected metrics path %q, got %q", DefaultMetricsPath, cfg.Telemetry.Metrics.Path)
				}
				if cfg.Telemetry.Metrics.Namespace != DefaultMetricsNamespace {
					t.Errorf("expected metrics namespace %q, got %q", DefaultMetricsNamespace, cfg.Telemetry.Metrics.Namespace)
				}
				if cfg.Telemetry.Health.LivenessPath != DefaultLivenessPath {
					t.Errorf("expected liveness path %q, got %q", DefaultLivenessPath, cfg.Telemetry.Health.LivenessPath)
				}
				if !cfg.Audit.SQLite.WALMode {
					t.Error("expected WAL mode enabled by default")
				}
				if !cfg.Audit.Export.JSONPretty {
					t.Error("expected pretty JSON export by default")
				}
				if !cfg.Audit.Export.CSVIncludeHeader {
					t.Error("expected CSV header enabled by default")
				}
				if !cfg.Sources.Jurisdiction.Watch {
					t.Error("expected jurisdiction watch enabled by default")
				}
				if !cfg.Registry.Watch {
					t.Error("expected registry watch enabled by default")
				}
				if !cfg.Telemetry.Logging.RedactPhoneNumbers {
					t.Error("expected phone redaction enabled by default")
				}
				if !cfg.Telemetry.Metrics.Enabled {
					t.Error("expected metrics enabled by default")
				}
			},
		},
		{
			name: "true-default booleans reapply over explicit false",
			input: Config{
				Telemetry: TelemetryConfig{
					Logging: LoggingConfig{RedactPhoneNumbers: false},
				},
			},
			check: func(t *testing.T, cfg *Config) {
				// A false here is indistinguishable from an omitted key, so
				// the default wins; disabling goes through an env override.
				if !cfg.Telemetry.Logging.RedactPhoneNumbers {
					t.Error("expected redaction default to reapply")
				}
			},
		},
		{
			name:  "engine defaults come from the engine package",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				defaults := clearance.DefaultEngineConfig()
				if cfg.Engine.EvaluationTimeout != defaults.EvaluationTimeout {
					t.Errorf("expected evaluation timeout %v, got %v", defaults.EvaluationTimeout, cfg.Engine.EvaluationTimeout)
				}
				if cfg.Engine.SourceTimeout != defaults.SourceTimeout {
					t.Errorf("expected source timeout %v, got %v", defaults.SourceTimeout, cfg.Engine.SourceTimeout)
				}
				if cfg.Engine.CallingWindowStart != defaults.CallingWindowStart {
					t.Errorf("expected calling window start %d, got %d", defaults.CallingWindowStart, cfg.Engine.CallingWindowStart)
				}
				if cfg.Engine.CallingWindowEnd != defaults.CallingWindowEnd {
					t.Errorf("expected calling window end %d, got %d", defaults.CallingWindowEnd, cfg.Engine.CallingWindowEnd)
				}
				if cfg.Engine.FrequencyCap != defaults.FrequencyCap {
					t.Errorf("expected frequency cap %d, got %d", defaults.FrequencyCap, cfg.Engine.FrequencyCap)
				}
				if cfg.Engine.FrequencyWindow != defaults.FrequencyWindow {
					t.Errorf("expected frequency window %v, got %v", defaults.FrequencyWindow, cfg.Engine.FrequencyWindow)
				}
				if cfg.Engine.CooldownWindow != defaults.CooldownWindow {
					t.Errorf("expected cooldown window %v, got %v", defaults.CooldownWindow, cfg.Engine.CooldownWindow)
				}
			},
		},
		{
			name: "existing values are preserved",
			input: Config{
				Server: ServerConfig{
					ListenAddress: "0.0.0.0:9999",
					ReadTimeout:   45 * time.Second,
				},
				Engine: EngineConfig{
					FrequencyCap: 3,
				},
				Sources: SourcesConfig{
					History: HistoryConfig{
						Retention: HistoryRetentionConfig{Days: 180},
					},
				},
				Telemetry: TelemetryConfig{
					Logging: LoggingConfig{Level: "debug"},
				},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.ListenAddress != "0.0.0.0:9999" {
					t.Errorf("expected preserved listen address, got %q", cfg.Server.ListenAddress)
				}
				if cfg.Server.ReadTimeout != 45*time.Second {
					t.Errorf("expected preserved read timeout, got %v", cfg.Server.ReadTimeout)
				}
				if cfg.Engine.FrequencyCap != 3 {
					t.Errorf("expected preserved frequency cap, got %d", cfg.Engine.FrequencyCap)
				}
				if cfg.Sources.History.Retention.Days != 180 {
					t.Errorf("expected preserved retention days, got %d", cfg.Sources.History.Retention.Days)
				}
				if cfg.Telemetry.Logging.Level != "debug" {
					t.Errorf("expected preserved logging level, got %q", cfg.Telemetry.Logging.Level)
				}
				// Untouched fields still receive defaults.
				if cfg.Server.WriteTimeout != DefaultWriteTimeout {
					t.Errorf("expected default write timeout, got %v", cfg.Server.WriteTimeout)
				}
				if cfg.Telemetry.Logging.Format != DefaultLoggingFormat {
					t.Errorf("expected default logging format, got %q", cfg.Telemetry.Logging.Format)
				}
			},
		},
		{
			name: "refresh schedule defaults only when a snapshot is configured",
			input: Config{
				Sources: SourcesConfig{
					DNC: DNCConfig{SnapshotPath: "/data/dnc.yaml"},
				},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Sources.DNC.RefreshSchedule != DefaultDNCRefreshSchedule {
					t.Errorf("expected refresh schedule %q, got %q", DefaultDNCRefreshSchedule, cfg.Sources.DNC.RefreshSchedule)
				}
			},
		},
		{
			name:  "no refresh schedule without a snapshot",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Sources.DNC.RefreshSchedule != "" {
					t.Errorf("expected empty refresh schedule, got %q", cfg.Sources.DNC.RefreshSchedule)
				}
			},
		},
		{
			name: "explicit midnight window start is preserved",
			input: Config{
				Engine: EngineConfig{
					CallingWindowStart: 0,
					CallingWindowEnd:   21,
				},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Engine.CallingWindowStart != 0 {
					t.Errorf("expected calling window start 0, got %d", cfg.Engine.CallingWindowStart)
				}
				if cfg.Engine.CallingWindowEnd != 21 {
					t.Errorf("expected calling window end 21, got %d", cfg.Engine.CallingWindowEnd)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			ApplyDefaults(&cfg)
			tt.check(t, &cfg)
		})
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	first := cfg
	ApplyDefaults(&cfg)

	if cfg.Server != first.Server {
		t.Error("server config changed on second ApplyDefaults call")
	}
	if cfg.Audit != first.Audit {
		t.Error("audit config changed on second ApplyDefaults call")
	}
	if cfg.Telemetry != first.Telemetry {
		t.Error("telemetry config changed on second ApplyDefaults call")
	}
	if cfg.Engine.FrequencyCap != first.Engine.FrequencyCap ||
		cfg.Engine.FrequencyWindow != first.Engine.FrequencyWindow ||
		cfg.Engine.CooldownWindow != first.Engine.CooldownWindow {
		t.Error("engine config changed on second ApplyDefaults call")
	}
}
