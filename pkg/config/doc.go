// Package config provides configuration management for DialGuard.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention DIALGUARD_SECTION_FIELD.
// For example:
//
//   - DIALGUARD_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - DIALGUARD_ENGINE_FREQUENCY_CAP overrides engine.frequency_cap
//   - DIALGUARD_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// All configuration is validated automatically during loading. Tag-level
// constraints cover required fields and numeric ranges; the engine section
// is validated by the engine package itself; cross-section checks catch
// combinations that would weaken enforcement, such as an attempt log
// retention shorter than the frequency window.
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - audit.sqlite.path: is required
//	  - sources.history.retention.days: retention must cover engine.frequency_window
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//
//	engine:
//	  frequency_cap: 7
//	  frequency_window: 168h
//
//	audit:
//	  sqlite:
//	    path: "data/audit.db"
//
//	sources:
//	  dnc:
//	    snapshot_path: "config/dnc.yaml"
//	  jurisdiction:
//	    path: "config/jurisdictions.yaml"
//	    watch: true
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
