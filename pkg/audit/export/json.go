package export

import (
	"context"
	"encoding/json"
	"io"

	"veritel-hq/dialguard/pkg/audit"
)

// JSONExporter writes decision record entries as a JSON array.
type JSONExporter struct {
	// Pretty enables indented output.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes a fully materialized slice of entries to w.
func (e *JSONExporter) Export(ctx context.Context, entries []*audit.Entry, w io.Writer) error {
	if len(entries) == 0 {
		_, err := io.WriteString(w, "[]")
		return err
	}

	data, err := e.marshal(entries, "")
	if err != nil {
		return audit.NewExportError("json", len(entries), err)
	}
	if _, err := w.Write(data); err != nil {
		return audit.NewExportError("json", len(entries), err)
	}
	return nil
}

// ExportStream writes entries from a channel as they arrive, so a large
// record never has to fit in memory. The output is still one JSON
// array, matching Export.
func (e *JSONExporter) ExportStream(ctx context.Context, entries <-chan *audit.Entry, w io.Writer) error {
	count := 0
	fail := func(err error) error {
		return audit.NewExportError("json", count, err)
	}

	if _, err := io.WriteString(w, "["); err != nil {
		return fail(err)
	}

	for {
		var entry *audit.Entry
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry, ok = <-entries:
		}
		if !ok {
			break
		}

		if count > 0 {
			sep := ","
			if e.Pretty {
				sep = ",\n"
			}
			if _, err := io.WriteString(w, sep); err != nil {
				return fail(err)
			}
		}

		data, err := e.marshal(entry, "  ")
		if err != nil {
			return fail(err)
		}
		if _, err := w.Write(data); err != nil {
			return fail(err)
		}
		count++
	}

	if _, err := io.WriteString(w, "]"); err != nil {
		return fail(err)
	}
	return nil
}

func (e *JSONExporter) marshal(v any, prefix string) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(v, prefix, "  ")
	}
	return json.Marshal(v)
}
