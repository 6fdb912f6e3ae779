// DialGuard is a pre-action compliance decision engine for outbound
// contact attempts.
//
// It answers one question before a dialer places a call: is this attempt
// permitted right now? Every decision runs a fixed registry of compliance
// rules, writes a tamper-evident decision record, and fails closed when
// any dependency misbehaves.
//
// Usage:
//
//	# Start the decision service with default configuration
//	dialguard run
//
//	# Start with custom configuration file
//	dialguard run --config /path/to/config.yaml
//
//	# Show version information
//	dialguard version
//
//	# Validate configuration and data files
//	dialguard validate
//
//	# Query the decision record
//	dialguard audit query --time-range "2026-08-01T00:00:00Z/2026-08-02T00:00:00Z"
//
//	# Verify the decision record hash chain
//	dialguard audit verify
//
// For complete documentation, see: https://github.com/veritel-hq/dialguard
package main

func main() {
	Execute()
}
