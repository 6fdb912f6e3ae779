package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"veritel-hq/dialguard/pkg/audit"
)

// CSVExporter exports decision record entries to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes entries to the provided writer in CSV format.
func (e *CSVExporter) Export(ctx context.Context, entries []*audit.Entry, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header row if configured
	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return audit.NewExportError("csv", len(entries), err)
		}
	}

	// Write data rows
	for _, entry := range entries {
		if err := writer.Write(entryToRow(entry)); err != nil {
			return audit.NewExportError("csv", len(entries), err)
		}
	}

	return nil
}

// ExportStream exports entries from a channel to CSV format. This is
// memory-efficient for large result sets as it streams entries one at a
// time instead of loading the full record in memory.
//
// The CSV writer flushes periodically to provide progress feedback for
// long-running exports.
func (e *CSVExporter) ExportStream(ctx context.Context, entriesCh <-chan *audit.Entry, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header if configured
	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return audit.NewExportError("csv", 0, err)
		}
	}

	entryCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case entry, ok := <-entriesCh:
			if !ok {
				// Channel closed - flush and return
				writer.Flush()
				if err := writer.Error(); err != nil {
					return audit.NewExportError("csv", entryCount, err)
				}
				return nil
			}

			if err := writer.Write(entryToRow(entry)); err != nil {
				return audit.NewExportError("csv", entryCount, err)
			}

			entryCount++

			// Flush periodically (every 100 entries)
			if entryCount%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return audit.NewExportError("csv", entryCount, err)
				}
			}
		}
	}
}

// headerRow returns the CSV header row.
func headerRow() []string {
	return []string{
		"sequence", "id",
		"evaluation_id", "organization_id",
		"rule", "outcome", "code", "reason",
		"masked_phone",
		"occurred_at",
		"chain_hash",
	}
}

// entryToRow converts an entry to a CSV row.
func entryToRow(entry *audit.Entry) []string {
	return []string{
		fmt.Sprintf("%d", entry.Sequence),
		entry.ID,
		entry.EvaluationID,
		entry.OrganizationID,
		entry.Rule,
		string(entry.Outcome),
		entry.Code,
		entry.Reason,
		entry.MaskedPhone,
		entry.OccurredAt.UTC().Format(time.RFC3339Nano),
		entry.ChainHash,
	}
}
