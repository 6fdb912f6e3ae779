package main

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"veritel-hq/dialguard/pkg/clearance"
	"veritel-hq/dialguard/pkg/config"
	"veritel-hq/dialguard/pkg/sources/dnc"
	"veritel-hq/dialguard/pkg/sources/jurisdiction"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and data files",
	Long: `Validate the DialGuard configuration and its referenced data files.

The validate command loads the configuration with environment overrides
applied, checks every section against its constraints, and then parses
the data files the configuration points at:
  - The rule registry order file (YAML)
  - The suppression snapshot (YAML)
  - The jurisdiction table (YAML)
  - The refresh and retention cron schedules

It never opens the databases, so it is safe to run against a live
deployment's configuration.

Examples:
  # Validate the default config
  dialguard validate

  # Validate a specific config
  dialguard validate --config /etc/dialguard/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	fmt.Printf("✓ Configuration valid: %s\n", cfgFile)

	if path := cfg.Registry.OrderPath; path != "" {
		order, err := clearance.LoadOrder(path)
		if err != nil {
			return fmt.Errorf("rule order file invalid: %w", err)
		}

		known := make(map[clearance.RuleID]bool)
		for _, id := range clearance.DefaultOrder() {
			known[id] = true
		}
		seen := make(map[clearance.RuleID]bool, len(order))
		for _, id := range order {
			if !known[id] {
				return fmt.Errorf("rule order file invalid: unknown rule id %q", id)
			}
			if seen[id] {
				return fmt.Errorf("rule order file invalid: duplicate rule id %q", id)
			}
			seen[id] = true
		}
		if len(order) != len(known) {
			return fmt.Errorf("rule order file invalid: lists %d rules, registry has %d", len(order), len(known))
		}
		fmt.Printf("✓ Rule order valid: %s (%d rules)\n", path, len(order))
	}

	if path := cfg.Sources.DNC.SnapshotPath; path != "" {
		snapshot, err := dnc.LoadSnapshotFile(path)
		if err != nil {
			return fmt.Errorf("suppression snapshot invalid: %w", err)
		}

		total := len(snapshot.Global)
		for _, numbers := range snapshot.Organizations {
			total += len(numbers)
		}
		fmt.Printf("✓ Suppression snapshot valid: %s (%d numbers)\n", path, total)
	}

	if schedule := cfg.Sources.DNC.RefreshSchedule; schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return fmt.Errorf("suppression refresh schedule invalid: %w", err)
		}
		fmt.Printf("✓ Suppression refresh schedule valid: %q\n", schedule)
	}

	if path := cfg.Sources.Jurisdiction.Path; path != "" {
		store, err := jurisdiction.NewStoreFromFile(path)
		if err != nil {
			return fmt.Errorf("jurisdiction table invalid: %w", err)
		}
		fmt.Printf("✓ Jurisdiction table valid: %s (%d jurisdictions)\n", path, store.Size())
	}

	if schedule := cfg.Sources.History.Retention.Schedule; schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return fmt.Errorf("attempt log retention schedule invalid: %w", err)
		}
		fmt.Printf("✓ Retention schedule valid: %q\n", schedule)
	}

	fmt.Println()
	fmt.Println("All checks passed.")
	return nil
}
