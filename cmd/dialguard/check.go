package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"veritel-hq/dialguard/pkg/audit/recorder"
	auditstorage "veritel-hq/dialguard/pkg/audit/storage"
	"veritel-hq/dialguard/pkg/clearance"
	"veritel-hq/dialguard/pkg/clearance/rules"
	"veritel-hq/dialguard/pkg/cli"
	"veritel-hq/dialguard/pkg/config"
	"veritel-hq/dialguard/pkg/sources/crm"
	"veritel-hq/dialguard/pkg/sources/dnc"
	"veritel-hq/dialguard/pkg/sources/history"
	"veritel-hq/dialguard/pkg/sources/jurisdiction"
	"veritel-hq/dialguard/pkg/sources/tz"
	"veritel-hq/dialguard/pkg/telemetry/logging"
)

var checkFlags struct {
	org          string
	account      string
	phone        string
	jurisdiction string
	claimOpened  string
	at           string
	jsonOut      bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate a single clearance from the command line",
	Long: `Evaluate one clearance decision against the configured data stores
without starting the HTTP service.

The check runs the same engine the service runs: every rule evaluated
appends an entry to the decision record, and a blocked attempt exits
non-zero so the command can gate scripted dialing. The allow
reservation it takes is held in process memory and lapses when the
command exits, so a check never consumes the target's frequency
budget.

The suppression registry is read as last loaded; check never reloads
the snapshot file. The registry also takes an exclusive file lock, so
run check against a copy of the data directory rather than a live
service.

Examples:
  # Check whether a call may be placed right now
  dialguard check --org org-1 --account acct-9 --phone "+1 555 123 4567"

  # What-if: the same call at five past nine in the evening
  dialguard check --org org-1 --account acct-9 --phone +15551234567 \
    --at 2026-08-23T21:05:00-04:00

  # Include jurisdiction and claim age warnings
  dialguard check --org org-1 --account acct-9 --phone +15551234567 \
    --jurisdiction MA --claim-opened 2019-03-01

  # Machine-readable result
  dialguard check --org org-1 --account acct-9 --phone +15551234567 --json`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.org, "org", "", "organization id")
	checkCmd.Flags().StringVar(&checkFlags.account, "account", "", "account id")
	checkCmd.Flags().StringVar(&checkFlags.phone, "phone", "", "target phone number")
	checkCmd.Flags().StringVar(&checkFlags.jurisdiction, "jurisdiction", "", "two-letter jurisdiction code")
	checkCmd.Flags().StringVar(&checkFlags.claimOpened, "claim-opened", "", "claim open date (YYYY-MM-DD or RFC 3339)")
	checkCmd.Flags().StringVar(&checkFlags.at, "at", "", "evaluate as if at this time (RFC 3339, default now)")
	checkCmd.Flags().BoolVar(&checkFlags.jsonOut, "json", false, "print the evaluation result as JSON")

	// Mark required flags - panic if this fails as it's a programming error
	for _, name := range []string{"org", "account", "phone"} {
		if err := checkCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
}

// frozenClock pins the engine clock for what-if checks.
type frozenClock struct {
	at time.Time
}

func (c frozenClock) Now() time.Time { return c.at }

func runCheck(cmd *cobra.Command, args []string) error {
	// Parse the time flags before opening any store so a typo fails
	// fast.
	clock := clearance.SystemClock()
	if checkFlags.at != "" {
		at, err := time.Parse(time.RFC3339, checkFlags.at)
		if err != nil {
			return cli.NewCommandError("check", fmt.Errorf("invalid --at value %q: must be RFC 3339", checkFlags.at))
		}
		clock = frozenClock{at: at}
	}

	var claimOpened time.Time
	if checkFlags.claimOpened != "" {
		parsed, err := parseClaimOpened(checkFlags.claimOpened)
		if err != nil {
			return cli.NewCommandError("check", fmt.Errorf("invalid --claim-opened value %q: must be YYYY-MM-DD or RFC 3339", checkFlags.claimOpened))
		}
		claimOpened = parsed
	}

	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Components log through the default slog logger. Keep it quiet so
	// the verdict is the only output, but keep redaction active; the
	// redacting handler owns phone masking even at error level.
	level := "error"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:              level,
		Format:             cfg.Telemetry.Logging.Format,
		RedactPhoneNumbers: cfg.Telemetry.Logging.RedactPhoneNumbers,
		Writer:             os.Stderr,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	engine, closeStores, err := buildCheckEngine(cfg, clock, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	result, err := engine.Evaluate(context.Background(), &clearance.Request{
		OrganizationID:   checkFlags.org,
		AccountID:        checkFlags.account,
		PhoneNumber:      checkFlags.phone,
		JurisdictionCode: checkFlags.jurisdiction,
		ClaimOpenedAt:    claimOpened,
	})
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	if checkFlags.jsonOut {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return cli.NewCommandError("check", fmt.Errorf("failed to encode result: %w", err))
		}
		fmt.Println(string(out))
	} else {
		printVerdict(result)
	}

	if !result.Allowed {
		return cli.NewBlockedError(string(result.BlockedBy))
	}
	return nil
}

// buildCheckEngine wires the decision engine against the configured data
// stores, without the schedulers and watchers the service runs. The
// returned closer releases every store that was opened.
func buildCheckEngine(cfg *config.Config, clock clearance.Clock, logger *slog.Logger) (*clearance.Engine, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*clearance.Engine, func(), error) {
		closeAll()
		return nil, nil, err
	}

	auditStore, err := auditstorage.NewSQLiteStorage(&auditstorage.SQLiteConfig{
		Path:         cfg.Audit.SQLite.Path,
		MaxOpenConns: cfg.Audit.SQLite.MaxOpenConns,
		MaxIdleConns: cfg.Audit.SQLite.MaxIdleConns,
		WALMode:      cfg.Audit.SQLite.WALMode,
		BusyTimeout:  cfg.Audit.SQLite.BusyTimeout,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to open decision record: %w", err))
	}
	closers = append(closers, func() { _ = auditStore.Close() })

	rec := recorder.NewRecorder(auditStore, &recorder.Config{
		WriteTimeout: cfg.Audit.Recorder.WriteTimeout,
	})
	closers = append(closers, func() { _ = rec.Close() })

	accounts, err := crm.NewStore(&crm.Config{
		Path:         cfg.Sources.Accounts.Path,
		MaxOpenConns: cfg.Sources.Accounts.MaxOpenConns,
		MaxIdleConns: cfg.Sources.Accounts.MaxIdleConns,
		WALMode:      true,
		BusyTimeout:  cfg.Sources.Accounts.BusyTimeout,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to open account replica: %w", err))
	}
	closers = append(closers, func() { _ = accounts.Close() })

	dncStore, err := dnc.NewStore(&dnc.Config{
		Path:        cfg.Sources.DNC.Path,
		CacheSize:   cfg.Sources.DNC.CacheSize,
		BloomFPRate: cfg.Sources.DNC.BloomFPRate,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to open suppression registry: %w", err))
	}
	closers = append(closers, func() { _ = dncStore.Close() })

	histStore, err := history.NewSQLiteStoreWithConfig(history.SQLiteConfig{
		Path:               cfg.Sources.History.Path,
		CheckpointInterval: cfg.Sources.History.CheckpointInterval,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to open attempt log: %w", err))
	}
	closers = append(closers, func() { _ = histStore.Close() })

	resolver, err := tz.NewResolver(&tz.Config{
		DefaultZone: cfg.Sources.Timezone.DefaultZone,
		Overrides:   cfg.Sources.Timezone.Overrides,
		CacheSize:   cfg.Sources.Timezone.CacheSize,
	})
	if err != nil {
		return fail(cli.NewConfigError("sources.timezone", err.Error()))
	}

	juris := jurisdiction.NewStore()
	if path := cfg.Sources.Jurisdiction.Path; path != "" {
		if err := juris.LoadFile(path); err != nil {
			return fail(fmt.Errorf("failed to load jurisdiction table: %w", err))
		}
	}

	engineCfg := cfg.Engine.ToEngine()
	coordinator := clearance.NewCoordinator(engineCfg.ReservationTTL, clock)

	ruleSet, err := rules.DefaultSet(rules.Deps{
		Flags:         accounts,
		Consent:       accounts,
		LegalHolds:    accounts,
		DNC:           dncStore,
		History:       histStore,
		Timezones:     resolver,
		Jurisdictions: juris,
		Reservations:  coordinator,
	}, engineCfg)
	if err != nil {
		return fail(fmt.Errorf("failed to build rule set: %w", err))
	}

	registry, err := clearance.NewRegistry(ruleSet)
	if err != nil {
		return fail(fmt.Errorf("failed to build rule registry: %w", err))
	}

	engine, err := clearance.NewEngine(engineCfg, registry, coordinator, rec, clock, logger)
	if err != nil {
		return fail(fmt.Errorf("failed to build decision engine: %w", err))
	}

	return engine, closeAll, nil
}

func parseClaimOpened(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func printVerdict(result *clearance.EvaluationResult) {
	ms := result.Duration.Seconds() * 1000
	switch {
	case result.Allowed:
		fmt.Printf("✓ ALLOWED (%.1fms)\n", ms)
	case result.BlockedBy == clearance.SystemErrorCode:
		fmt.Printf("✗ DENIED: system error (%.1fms)\n", ms)
		fmt.Printf("  %s\n", result.BlockReason)
	default:
		fmt.Printf("✗ BLOCKED by %s (%.1fms)\n", result.BlockedBy, ms)
		fmt.Printf("  %s\n", result.BlockReason)
	}

	for _, w := range result.Warnings {
		fmt.Printf("  warning %s: %s\n", w.Rule, w.Reason)
	}

	ids := make([]string, len(result.Evaluated))
	for i, id := range result.Evaluated {
		ids[i] = string(id)
	}
	fmt.Println()
	fmt.Printf("  evaluation: %s\n", result.EvaluationID)
	fmt.Printf("  rules evaluated: %s\n", strings.Join(ids, ", "))
}
