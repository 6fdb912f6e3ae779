package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"veritel-hq/dialguard/pkg/audit"
	"veritel-hq/dialguard/pkg/audit/export"
	auditstorage "veritel-hq/dialguard/pkg/audit/storage"
	"veritel-hq/dialguard/pkg/cli"
	"veritel-hq/dialguard/pkg/config"
)

var auditFlags struct {
	timeRange    string
	evaluationID string
	organization string
	rule         string
	outcome      string
	code         string
	limit        int
	offset       int
	sortOrder    string
	format       string
	output       string
	pretty       bool
	noHeader     bool
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the decision record",
	Long: `Query, export, and verify the append-only decision record.

The audit command reads the decision record database directly, so it
works against a stopped service or a copy of the database file.

Subcommands:
  query   - Query entries with filters
  export  - Export entries to CSV or JSON
  verify  - Recompute and verify the tamper-evidence hash chain

Examples:
  # Query one evaluation
  dialguard audit query --evaluation-id "7d3c0a3e-..."

  # Export a day to CSV
  dialguard audit export --format csv --time-range "2026-08-01T00:00:00Z/2026-08-02T00:00:00Z" -o extract.csv

  # Verify the whole record
  dialguard audit verify`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query decision record entries",
	Long: `Query decision record entries with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-01T00:00:00Z/2026-08-02T00:00:00Z"

Examples:
  # Entries for one organization in a time range
  dialguard audit query --org "org-1" --time-range "2026-08-01T00:00:00Z/2026-08-02T00:00:00Z"

  # Every block by the suppression rule
  dialguard audit query --rule do_not_contact --outcome block

  # Machine-readable output
  dialguard audit query --format json --output entries.json`,
	RunE: queryAudit,
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export decision record entries",
	Long: `Export decision record entries to CSV or JSON.

Entries stream from storage in sequence order, so exports of any size
run in constant memory. Progress is reported on stderr when writing to
a file.

Examples:
  # CSV extract for a regulator
  dialguard audit export --format csv --time-range "2026-08-01T00:00:00Z/2026-09-01T00:00:00Z" -o extract.csv

  # Pretty JSON to stdout
  dialguard audit export --format json --pretty`,
	RunE: exportAudit,
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the decision record hash chain",
	Long: `Recompute the tamper-evidence hash chain over the entire decision
record and compare it to the stored hashes.

Each entry's chain hash covers the previous entry's hash and its own
content, so the chain must be verified from the first entry; filters
would break the recomputation and are deliberately not offered. The
command streams entries in sequence order and reports the first
mismatch, if any.`,
	RunE: verifyAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditExportCmd, auditVerifyCmd)

	// Flags for query command
	auditQueryCmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	auditQueryCmd.Flags().StringVar(&auditFlags.evaluationID, "evaluation-id", "", "filter by evaluation ID")
	auditQueryCmd.Flags().StringVar(&auditFlags.organization, "org", "", "filter by organization ID")
	auditQueryCmd.Flags().StringVar(&auditFlags.rule, "rule", "", "filter by rule identifier")
	auditQueryCmd.Flags().StringVar(&auditFlags.outcome, "outcome", "", "filter by outcome (pass, block, warn, system_error)")
	auditQueryCmd.Flags().StringVar(&auditFlags.code, "code", "", "filter by reason code")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 100, "max results")
	auditQueryCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	auditQueryCmd.Flags().StringVar(&auditFlags.sortOrder, "sort", "asc", "sort order (asc, desc)")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")
	auditQueryCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")

	// Flags for export command
	auditExportCmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	auditExportCmd.Flags().StringVar(&auditFlags.evaluationID, "evaluation-id", "", "filter by evaluation ID")
	auditExportCmd.Flags().StringVar(&auditFlags.organization, "org", "", "filter by organization ID")
	auditExportCmd.Flags().StringVar(&auditFlags.format, "format", "csv", "export format: csv, json")
	auditExportCmd.Flags().BoolVar(&auditFlags.pretty, "pretty", false, "pretty-print JSON output")
	auditExportCmd.Flags().BoolVar(&auditFlags.noHeader, "no-header", false, "omit the CSV header row")
	auditExportCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")
}

// openAuditStorage opens the decision record database referenced by the
// loaded configuration.
func openAuditStorage() (*auditstorage.SQLiteStorage, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	store, err := auditstorage.NewSQLiteStorage(&auditstorage.SQLiteConfig{
		Path:         cfg.Audit.SQLite.Path,
		MaxOpenConns: cfg.Audit.SQLite.MaxOpenConns,
		MaxIdleConns: cfg.Audit.SQLite.MaxIdleConns,
		WALMode:      cfg.Audit.SQLite.WALMode,
		BusyTimeout:  cfg.Audit.SQLite.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open decision record: %w", err)
	}
	return store, nil
}

// buildAuditQuery translates the shared flags into a storage query.
func buildAuditQuery() (*audit.Query, error) {
	query := &audit.Query{
		EvaluationID:   auditFlags.evaluationID,
		OrganizationID: auditFlags.organization,
		Rule:           auditFlags.rule,
		Code:           auditFlags.code,
		Limit:          auditFlags.limit,
		Offset:         auditFlags.offset,
		SortOrder:      auditFlags.sortOrder,
	}

	if auditFlags.outcome != "" {
		outcome := audit.Outcome(auditFlags.outcome)
		if !outcome.Valid() {
			return nil, fmt.Errorf("invalid outcome %q (expected: pass, block, warn, system_error)", auditFlags.outcome)
		}
		query.Outcome = outcome
	}

	if auditFlags.timeRange != "" {
		start, end, err := parseTimeRange(auditFlags.timeRange)
		if err != nil {
			return nil, err
		}
		query.StartTime = start
		query.EndTime = end
	}

	return query, nil
}

// parseTimeRange parses an RFC3339 interval of the form "start/end".
func parseTimeRange(s string) (*time.Time, *time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid time range format (expected: start/end)")
	}

	start, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start time: %w", err)
	}

	end, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid end time: %w", err)
	}

	return &start, &end, nil
}

// openOutput returns the output writer for the --output flag, which is
// stdout when the flag is unset.
func openOutput() (io.WriteCloser, bool, error) {
	if auditFlags.output == "" {
		return os.Stdout, false, nil
	}
	f, err := os.Create(auditFlags.output)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, true, nil
}

func queryAudit(cmd *cobra.Command, args []string) error {
	store, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	query, err := buildAuditQuery()
	if err != nil {
		return err
	}

	ctx := context.Background()
	entries, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("audit query", fmt.Errorf("query failed: %w", err))
	}

	out, isFile, err := openOutput()
	if err != nil {
		return err
	}
	if isFile {
		defer out.Close()
	}

	switch auditFlags.format {
	case "json":
		return outputAuditJSON(out, entries)
	case "text":
		return outputAuditText(out, entries, query)
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", auditFlags.format)
	}
}

func outputAuditText(out io.Writer, entries []*audit.Entry, query *audit.Query) error {
	if query.StartTime != nil && query.EndTime != nil {
		fmt.Fprintf(out, "Time range: %s to %s\n",
			query.StartTime.Format(time.RFC3339),
			query.EndTime.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "Entries: %d\n", len(entries))
	fmt.Fprintln(out)

	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries found.")
		return nil
	}

	for i, entry := range entries {
		if i > 0 {
			fmt.Fprintln(out)
		}

		fmt.Fprintf(out, "Sequence: %d\n", entry.Sequence)
		fmt.Fprintf(out, "Evaluation: %s\n", entry.EvaluationID)
		fmt.Fprintf(out, "Organization: %s\n", entry.OrganizationID)
		fmt.Fprintf(out, "Rule: %s\n", entry.Rule)
		fmt.Fprintf(out, "Outcome: %s\n", entry.Outcome)
		if entry.Code != "" {
			fmt.Fprintf(out, "Code: %s\n", entry.Code)
		}
		if entry.Reason != "" {
			fmt.Fprintf(out, "Reason: %s\n", entry.Reason)
		}
		fmt.Fprintf(out, "Target: %s\n", entry.MaskedPhone)
		fmt.Fprintf(out, "Occurred: %s\n", entry.OccurredAt.Format(time.RFC3339))

		// Show limited output for large result sets
		if i >= 9 && len(entries) > 10 {
			remaining := len(entries) - 10
			fmt.Fprintln(out)
			fmt.Fprintf(out, "... and %d more entries\n", remaining)
			fmt.Fprintf(out, "Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}

func outputAuditJSON(out io.Writer, entries []*audit.Entry) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	result := map[string]interface{}{
		"total_entries": len(entries),
		"entries":       entries,
	}

	return encoder.Encode(result)
}

func exportAudit(cmd *cobra.Command, args []string) error {
	store, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	// Exports ignore the pagination flags: an extract is the full match.
	auditFlags.limit = 0
	auditFlags.offset = 0
	auditFlags.sortOrder = "asc"

	query, err := buildAuditQuery()
	if err != nil {
		return err
	}

	var exporter audit.StreamExporter
	switch auditFlags.format {
	case "csv":
		exporter = export.NewCSVExporter(!auditFlags.noHeader)
	case "json":
		exporter = export.NewJSONExporter(auditFlags.pretty)
	default:
		return fmt.Errorf("unsupported format: %s (supported: csv, json)", auditFlags.format)
	}

	ctx := context.Background()

	out, isFile, err := openOutput()
	if err != nil {
		return err
	}
	if isFile {
		defer out.Close()
	}

	entries, errCh, err := store.QueryStream(ctx, query)
	if err != nil {
		return cli.NewCommandError("audit export", fmt.Errorf("query failed: %w", err))
	}

	// Progress belongs on stderr, and only when the data goes to a file;
	// a bar interleaved with piped stdout data helps nobody.
	source := entries
	var progress cli.ProgressReporter
	if isFile {
		total, err := store.Count(ctx, query)
		if err != nil {
			return cli.NewCommandError("audit export", fmt.Errorf("count failed: %w", err))
		}

		progress = cli.NewProgressReporter(os.Stderr)
		progress.Start(total)

		counted := make(chan *audit.Entry)
		go func() {
			defer close(counted)
			var n int64
			for entry := range entries {
				n++
				progress.Update(n)
				counted <- entry
			}
		}()
		source = counted
	}

	if err := exporter.ExportStream(ctx, source, out); err != nil {
		if progress != nil {
			progress.Error(err)
		}
		return cli.NewCommandError("audit export", err)
	}
	if err := <-errCh; err != nil {
		if progress != nil {
			progress.Error(err)
		}
		return cli.NewCommandError("audit export", err)
	}

	if progress != nil {
		progress.Finish()
	}
	return nil
}

func verifyAudit(cmd *cobra.Command, args []string) error {
	store, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	// The whole record, first entry onward, in sequence order.
	entries, errCh, err := store.QueryStream(ctx, &audit.Query{SortOrder: "asc"})
	if err != nil {
		return cli.NewCommandError("audit verify", fmt.Errorf("query failed: %w", err))
	}

	fmt.Println("Verifying decision record hash chain...")

	var (
		count int64
		prev  string
	)
	for entry := range entries {
		want := audit.ChainHash(prev, entry)
		if entry.ChainHash != want {
			mismatch := &audit.ChainMismatchError{
				Index:    int(count),
				Sequence: entry.Sequence,
				Stored:   entry.ChainHash,
				Computed: want,
			}
			fmt.Println()
			fmt.Printf("✗ Chain mismatch at sequence %d (entry %s)\n", entry.Sequence, entry.ID)
			fmt.Printf("  stored:   %s\n", entry.ChainHash)
			fmt.Printf("  computed: %s\n", want)
			return cli.NewCommandError("audit verify", mismatch)
		}
		prev = want
		count++
	}
	if err := <-errCh; err != nil {
		return cli.NewCommandError("audit verify", err)
	}

	if count == 0 {
		fmt.Println("Decision record is empty; nothing to verify.")
		return nil
	}

	fmt.Println()
	fmt.Printf("✓ Chain intact: %d entries verified\n", count)
	fmt.Printf("✓ Chain head: %s\n", prev)
	return nil
}
