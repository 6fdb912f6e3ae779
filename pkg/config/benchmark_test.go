package config

import (
	"testing"
)

func BenchmarkLoadConfig(b *testing.B) {
	path := writeSingletonConfig(b, `
server:
  listen_address: "127.0.0.1:8080"
  read_timeout: "30s"
  write_timeout: "30s"
  idle_timeout: "120s"

engine:
  evaluation_timeout: "10s"
  source_timeout: "2s"
  calling_window_start: 8
  calling_window_end: 21
  frequency_cap: 7
  frequency_cap_by_org:
    org-strict: 3
  frequency_window: "168h"
  cooldown_window: "168h"

audit:
  sqlite:
    path: "./audit.db"
    wal_mode: true
  query:
    default_limit: 100
    max_limit: 10000

sources:
  accounts:
    path: "./accounts.db"
  dnc:
    path: "./dnc.db"
    snapshot_path: "./dnc.yaml"
    refresh_schedule: "0 * * * *"
  history:
    path: "./attempts.db"
    retention:
      days: 90
  timezone:
    default_zone: "America/Chicago"
  jurisdiction:
    path: "./jurisdictions.yaml"
    watch: true

telemetry:
  logging:
    level: "info"
    format: "json"
  metrics:
    enabled: true
    path: "/metrics"
`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadConfig(path); err != nil {
			b.Fatalf("loading config: %v", err)
		}
	}
}

func BenchmarkLoadConfigWithEnvOverrides(b *testing.B) {
	path := writeSingletonConfig(b, `
server:
  listen_address: "127.0.0.1:8080"

telemetry:
  logging:
    level: "info"
    format: "json"
`)

	b.Setenv("DIALGUARD_SERVER_LISTEN_ADDRESS", "0.0.0.0:9090")
	b.Setenv("DIALGUARD_ENGINE_FREQUENCY_CAP", "5")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadConfigWithEnvOverrides(path); err != nil {
			b.Fatalf("loading config: %v", err)
		}
	}
}

func BenchmarkValidate(b *testing.B) {
	cfg := NewTestConfig().Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Validate(cfg); err != nil {
			b.Fatalf("validation failed: %v", err)
		}
	}
}

func BenchmarkApplyDefaults(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var cfg Config
		ApplyDefaults(&cfg)
	}
}

func BenchmarkGetConfig(b *testing.B) {
	SetConfig(MinimalConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetConfig()
	}
}

func BenchmarkConfigBuilder(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = NewTestConfig().
			WithListenAddress("0.0.0.0:8080").
			WithFrequencyCap(5).
			WithLoggingLevel("debug").
			Build()
	}
}
