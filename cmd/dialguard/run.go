package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"veritel-hq/dialguard/pkg/audit/recorder"
	auditstorage "veritel-hq/dialguard/pkg/audit/storage"
	"veritel-hq/dialguard/pkg/clearance"
	"veritel-hq/dialguard/pkg/clearance/rules"
	"veritel-hq/dialguard/pkg/cli"
	"veritel-hq/dialguard/pkg/config"
	"veritel-hq/dialguard/pkg/server"
	"veritel-hq/dialguard/pkg/sources/crm"
	"veritel-hq/dialguard/pkg/sources/dnc"
	"veritel-hq/dialguard/pkg/sources/history"
	"veritel-hq/dialguard/pkg/sources/jurisdiction"
	"veritel-hq/dialguard/pkg/sources/tz"
	"veritel-hq/dialguard/pkg/telemetry/health"
	"veritel-hq/dialguard/pkg/telemetry/logging"
	"veritel-hq/dialguard/pkg/telemetry/metrics"
	"veritel-hq/dialguard/pkg/watch"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the DialGuard decision service",
	Long: `Start the DialGuard decision service with the specified configuration.

The service listens on the configured address and answers clearance
requests against the rule registry, recording every rule evaluated in
the append-only decision record.

Examples:
  # Start with default config
  dialguard run

  # Start with custom config
  dialguard run --config /etc/dialguard/config.yaml

  # Override listen address
  dialguard run --listen 0.0.0.0:8080

  # Validate config without starting the service
  dialguard run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the service")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	// The redacting logger must be the process default before any
	// component starts: every component logs through slog, and a raw
	// phone number in a log line is itself a compliance defect.
	logger, err := logging.New(logging.Config{
		Level:              cfg.Telemetry.Logging.Level,
		Format:             cfg.Telemetry.Logging.Format,
		AddSource:          cfg.Telemetry.Logging.AddSource,
		RedactPhoneNumbers: cfg.Telemetry.Logging.RedactPhoneNumbers,
		Writer:             os.Stdout,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	ctx := cli.SetupSignalHandler()

	// Decision record
	slog.Info("initializing decision record", "path", cfg.Audit.SQLite.Path)
	auditStore, err := auditstorage.NewSQLiteStorage(&auditstorage.SQLiteConfig{
		Path:         cfg.Audit.SQLite.Path,
		MaxOpenConns: cfg.Audit.SQLite.MaxOpenConns,
		MaxIdleConns: cfg.Audit.SQLite.MaxIdleConns,
		WALMode:      cfg.Audit.SQLite.WALMode,
		BusyTimeout:  cfg.Audit.SQLite.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to open decision record: %w", err)
	}
	defer auditStore.Close()

	rec := recorder.NewRecorder(auditStore, &recorder.Config{
		WriteTimeout: cfg.Audit.Recorder.WriteTimeout,
	})
	defer rec.Close()
	fmt.Println("✓ Decision record initialized")

	// Account replica
	accounts, err := crm.NewStore(&crm.Config{
		Path:         cfg.Sources.Accounts.Path,
		MaxOpenConns: cfg.Sources.Accounts.MaxOpenConns,
		MaxIdleConns: cfg.Sources.Accounts.MaxIdleConns,
		WALMode:      true,
		BusyTimeout:  cfg.Sources.Accounts.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to open account replica: %w", err)
	}
	defer accounts.Close()
	fmt.Println("✓ Account replica attached")

	// Suppression registry
	dncStore, err := dnc.NewStore(&dnc.Config{
		Path:        cfg.Sources.DNC.Path,
		CacheSize:   cfg.Sources.DNC.CacheSize,
		BloomFPRate: cfg.Sources.DNC.BloomFPRate,
	})
	if err != nil {
		return fmt.Errorf("failed to open suppression registry: %w", err)
	}
	defer dncStore.Close()

	// Attempt log
	histStore, err := history.NewSQLiteStoreWithConfig(history.SQLiteConfig{
		Path:               cfg.Sources.History.Path,
		CheckpointInterval: cfg.Sources.History.CheckpointInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to open attempt log: %w", err)
	}
	defer histStore.Close()
	fmt.Println("✓ Attempt log ready")

	// Timezone resolution
	resolver, err := tz.NewResolver(&tz.Config{
		DefaultZone: cfg.Sources.Timezone.DefaultZone,
		Overrides:   cfg.Sources.Timezone.Overrides,
		CacheSize:   cfg.Sources.Timezone.CacheSize,
	})
	if err != nil {
		return cli.NewConfigError("sources.timezone", err.Error())
	}

	// Jurisdiction table
	juris := jurisdiction.NewStore()
	if path := cfg.Sources.Jurisdiction.Path; path != "" {
		if err := juris.LoadFile(path); err != nil {
			return fmt.Errorf("failed to load jurisdiction table: %w", err)
		}
		fmt.Printf("✓ Jurisdiction table loaded (%d jurisdictions)\n", juris.Size())
	}

	// Decision engine
	engineCfg := cfg.Engine.ToEngine()
	clock := clearance.SystemClock()
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
		return fmt.Errorf("failed to build rule set: %w", err)
	}

	registry, err := clearance.NewRegistry(ruleSet)
	if err != nil {
		return fmt.Errorf("failed to build rule registry: %w", err)
	}

	if path := cfg.Registry.OrderPath; path != "" {
		order, err := clearance.LoadOrder(path)
		if err != nil {
			return fmt.Errorf("failed to load rule order: %w", err)
		}
		if err := registry.SetOrder(order); err != nil {
			return fmt.Errorf("failed to apply rule order: %w", err)
		}
	}

	engine, err := clearance.NewEngine(engineCfg, registry, coordinator, rec, clock, logger)
	if err != nil {
		return fmt.Errorf("failed to build decision engine: %w", err)
	}
	fmt.Printf("✓ Rule registry loaded (%d rules)\n", len(registry.Rules()))

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		collector.RegisterReservationsGauge(coordinator.LedgerSize)
		coordinator.SetMetrics(collector)
		engine.SetMetrics(collector)
		rec.SetMetrics(collector)
	}

	// Suppression snapshot loading and scheduled refresh
	if cfg.Sources.DNC.SnapshotPath != "" {
		refresher := dnc.NewRefresher(dncStore, &dnc.RefresherConfig{
			SnapshotPath: cfg.Sources.DNC.SnapshotPath,
			Schedule:     cfg.Sources.DNC.RefreshSchedule,
		})
		if collector != nil {
			refresher.SetMetrics(collector)
		}
		if err := refresher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start suppression refresher: %w", err)
		}
		defer refresher.Stop()

		stats := dncStore.Stats()
		fmt.Printf("✓ Suppression registry loaded (%d numbers)\n", stats.GlobalCount+stats.OrgCount)
	} else {
		fmt.Println("✓ Suppression registry attached")
	}

	// Attempt log retention
	if cfg.Sources.History.Retention.Schedule != "" {
		pruner := history.NewPruner(histStore, &history.PrunerConfig{
			RetentionDays: cfg.Sources.History.Retention.Days,
			Schedule:      cfg.Sources.History.Retention.Schedule,
		})
		if err := pruner.Start(ctx); err != nil {
			slog.Warn("failed to start attempt log pruner", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextRun(); next != nil {
				slog.Debug("attempt log pruner started", "next_prune", next)
			}
		}
	}

	// Rule order hot reload. A failed reload keeps the current order.
	if cfg.Registry.OrderPath != "" && cfg.Registry.Watch {
		watchCfg := watch.DefaultConfig()
		watchCfg.Path = cfg.Registry.OrderPath

		watcher, err := watch.NewFileWatcher(watchCfg, logger)
		if err != nil {
			slog.Warn("failed to create rule order watcher", "error", err)
		} else {
			orderPath := cfg.Registry.OrderPath
			go func() {
				if err := watcher.Watch(ctx, func() error {
					order, err := clearance.LoadOrder(orderPath)
					if err != nil {
						return err
					}
					return registry.SetOrder(order)
				}); err != nil {
					slog.Error("rule order watcher exited", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	// Jurisdiction table hot reload
	if cfg.Sources.Jurisdiction.Path != "" && cfg.Sources.Jurisdiction.Watch {
		watchCfg := watch.DefaultConfig()
		watchCfg.Path = cfg.Sources.Jurisdiction.Path

		watcher, err := watch.NewFileWatcher(watchCfg, logger)
		if err != nil {
			slog.Warn("failed to create jurisdiction table watcher", "error", err)
		} else {
			tablePath := cfg.Sources.Jurisdiction.Path
			go func() {
				if err := watcher.Watch(ctx, func() error {
					return juris.LoadFile(tablePath)
				}); err != nil {
					slog.Error("jurisdiction table watcher exited", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	// Health checks
	checker := health.New(5 * time.Second)
	checker.RegisterCheck("audit", auditStore.Ping)
	checker.RegisterCheck("accounts", accounts.Ping)
	checker.RegisterCheck("attempts", histStore.Ping)
	checker.RegisterCheck("dnc", dncStore.Ping)

	// HTTP server
	srv := server.NewServer(&cfg.Server, &cfg.Telemetry, &server.Dependencies{
		Engine:       engine,
		Attempts:     histStore,
		Reservations: coordinator,
		Decisions:    auditStore,
		Collector:    collector,
		Checker:      checker,
		Version: health.VersionInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		},
	}, logger)

	fmt.Println()
	fmt.Printf("✓ Clearance endpoint: http://%s/v1/clearances\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Health.ReadinessPath)
	if collector != nil && cfg.Telemetry.Metrics.Path != "" {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a signal, context cancellation, or listener
	// error, and performs the graceful shutdown itself.
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Service stopped")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("DialGuard v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("engine configuration",
		"calling_window_start", cfg.Engine.CallingWindowStart,
		"calling_window_end", cfg.Engine.CallingWindowEnd,
		"frequency_cap", cfg.Engine.FrequencyCap,
		"frequency_window", cfg.Engine.FrequencyWindow,
		"cooldown_window", cfg.Engine.CooldownWindow,
	)

	if cfg.Sources.DNC.SnapshotPath != "" {
		slog.Debug("suppression snapshot configured",
			"path", cfg.Sources.DNC.SnapshotPath,
			"schedule", cfg.Sources.DNC.RefreshSchedule,
		)
	}
}
