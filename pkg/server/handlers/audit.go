package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"veritel-hq/dialguard/pkg/audit"
	"veritel-hq/dialguard/pkg/audit/export"
	"veritel-hq/dialguard/pkg/server/middleware"
	"veritel-hq/dialguard/pkg/server/types"
)

const (
	// defaultAuditPageSize is applied when a listing request carries no
	// limit.
	defaultAuditPageSize = 100

	// maxAuditPageSize caps one listing page. Larger extracts go through
	// the export endpoint, which streams.
	maxAuditPageSize = 1000
)

// AuditListResponse is the JSON body of a decision record listing.
type AuditListResponse struct {
	// Entries is the requested page, in sequence order.
	Entries []*audit.Entry `json:"entries"`

	// Count is the total number of entries matching the filters, not
	// the page size.
	Count int64 `json:"count"`
}

// AuditHandler serves the decision record read API:
//
//	GET /v1/audit         paginated listing with filters
//	GET /v1/audit/export  streamed full extract (json or csv)
//
// The record is append-only; there is no write surface here. Entries are
// written exclusively by the decision engine.
type AuditHandler struct {
	decisions DecisionLog
	logger    *slog.Logger
}

// NewAuditHandler creates the decision record read handler.
func NewAuditHandler(decisions DecisionLog, logger *slog.Logger) *AuditHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditHandler{
		decisions: decisions,
		logger:    logger,
	}
}

// ServeHTTP implements http.Handler for the listing endpoint.
func (h *AuditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query, err := parseAuditQuery(r)
	if err != nil {
		if werr := WriteErrorResponse(w, HandleError(err)); werr != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}

	if query.Limit == 0 {
		query.Limit = defaultAuditPageSize
	}
	if query.Limit > maxAuditPageSize {
		query.Limit = maxAuditPageSize
	}

	entries, err := h.decisions.Query(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "decision record query failed",
			"request_id", requestID,
			"error", err,
		)

		errResp := types.NewServerError("Failed to read the decision record.")
		if werr := WriteErrorResponse(w, errResp); werr != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}

	count, err := h.decisions.Count(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "decision record count failed",
			"request_id", requestID,
			"error", err,
		)

		errResp := types.NewServerError("Failed to read the decision record.")
		if werr := WriteErrorResponse(w, errResp); werr != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}

	if entries == nil {
		entries = []*audit.Entry{}
	}

	resp := &AuditListResponse{
		Entries: entries,
		Count:   count,
	}

	if werr := WriteJSONResponse(w, http.StatusOK, resp); werr != nil {
		h.logger.ErrorContext(ctx, "failed to write listing response", "error", werr)
	}
}

// ExportHandler returns the handler for the streaming export endpoint.
func (h *AuditHandler) ExportHandler() http.Handler {
	return http.HandlerFunc(h.serveExport)
}

// serveExport streams the full filtered decision record in the requested
// format. Pagination parameters are honored if present but default to the
// whole record; memory stays flat because entries stream row by row.
func (h *AuditHandler) serveExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query, err := parseAuditQuery(r)
	if err != nil {
		if werr := WriteErrorResponse(w, HandleError(err)); werr != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	var (
		exporter    audit.StreamExporter
		contentType string
	)
	switch format {
	case "json":
		exporter = export.NewJSONExporter(r.URL.Query().Get("pretty") == "true")
		contentType = "application/json"
	case "csv":
		exporter = export.NewCSVExporter(true)
		contentType = "text/csv"
	default:
		errResp := types.NewInvalidRequestError(
			types.CodeValidationFailed,
			fmt.Sprintf("unsupported export format %q, use json or csv", format),
		)
		if werr := WriteErrorResponse(w, errResp); werr != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}

	entries, errCh, err := h.decisions.QueryStream(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "decision record export failed",
			"request_id", requestID,
			"error", err,
		)

		errResp := types.NewServerError("Failed to read the decision record.")
		if werr := WriteErrorResponse(w, errResp); werr != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}

	filename := fmt.Sprintf("decision-record-%s.%s", time.Now().UTC().Format("20060102T150405Z"), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := exporter.ExportStream(ctx, entries, w); err != nil {
		// Headers are already on the wire; the truncated output is all
		// the client gets. Log loudly so the operator knows the extract
		// is incomplete.
		h.logger.ErrorContext(ctx, "decision record export truncated",
			"request_id", requestID,
			"format", format,
			"error", err,
		)
		return
	}

	if err := <-errCh; err != nil {
		h.logger.ErrorContext(ctx, "decision record export truncated",
			"request_id", requestID,
			"format", format,
			"error", err,
		)
	}
}

// parseAuditQuery builds a decision record query from URL parameters.
func parseAuditQuery(r *http.Request) (*audit.Query, error) {
	params := r.URL.Query()

	query := &audit.Query{
		EvaluationID:   params.Get("evaluation_id"),
		OrganizationID: params.Get("organization_id"),
		Rule:           params.Get("rule"),
		Code:           params.Get("code"),
		SortOrder:      params.Get("sort_order"),
	}

	if v := params.Get("outcome"); v != "" {
		outcome := audit.Outcome(v)
		if !outcome.Valid() {
			return nil, &RequestError{
				Message: fmt.Sprintf("unknown outcome %q", v),
				Code:    types.CodeValidationFailed,
			}
		}
		query.Outcome = outcome
	}

	if v := params.Get("start_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, &RequestError{
				Message: fmt.Sprintf("start_time must be RFC 3339: %v", err),
				Code:    types.CodeValidationFailed,
			}
		}
		query.StartTime = &t
	}

	if v := params.Get("end_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, &RequestError{
				Message: fmt.Sprintf("end_time must be RFC 3339: %v", err),
				Code:    types.CodeValidationFailed,
			}
		}
		query.EndTime = &t
	}

	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, &RequestError{
				Message: "limit must be a non-negative integer",
				Code:    types.CodeValidationFailed,
			}
		}
		query.Limit = n
	}

	if v := params.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, &RequestError{
				Message: "offset must be a non-negative integer",
				Code:    types.CodeValidationFailed,
			}
		}
		query.Offset = n
	}

	return query, nil
}
