package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"veritel-hq/dialguard/pkg/clearance"
	"veritel-hq/dialguard/pkg/server/middleware"
	"veritel-hq/dialguard/pkg/telemetry/logging"
	"veritel-hq/dialguard/pkg/telemetry/metrics"
)

// ClearanceHandler serves POST /v1/clearances: one pre-dial compliance
// decision per request.
//
// A blocking verdict is a successful evaluation and returns 200 with
// allowed=false. Error status codes are reserved for requests the engine
// never evaluated: malformed bodies, invalid fields, and infrastructure
// failures outside the engine's fail-closed boundary.
type ClearanceHandler struct {
	engine  Engine
	metrics Metrics
	logger  *slog.Logger
}

// NewClearanceHandler creates the clearance decision handler.
// A nil metrics disables recording.
func NewClearanceHandler(engine Engine, m Metrics, logger *slog.Logger) *ClearanceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClearanceHandler{
		engine:  engine,
		metrics: m,
		logger:  logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *ClearanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req clearance.Request
	if err := decodeJSONBody(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to parse clearance request",
			"request_id", requestID,
			"error", err,
		)

		if werr := WriteErrorResponse(w, HandleError(err)); werr != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}

	ctx = logging.WithOrganizationID(ctx, strings.TrimSpace(req.OrganizationID))
	ctx = logging.WithAccountID(ctx, strings.TrimSpace(req.AccountID))

	result, err := h.engine.Evaluate(ctx, &req)
	if err != nil {
		h.handleEvaluateError(w, r, err)
		return
	}

	h.record(&req, result)

	logger := logging.FromContext(ctx, h.logger)
	logger.InfoContext(ctx, "clearance decided",
		"evaluation_id", result.EvaluationID,
		"allowed", result.Allowed,
		"blocked_by", result.BlockedBy,
		"warnings", len(result.Warnings),
		"rules_evaluated", len(result.Evaluated),
		"duration_ms", result.Duration.Milliseconds(),
	)

	if werr := WriteJSONResponse(w, http.StatusOK, result); werr != nil {
		h.logger.ErrorContext(ctx, "failed to write clearance response",
			"evaluation_id", result.EvaluationID,
			"error", werr,
		)
	}
}

// handleEvaluateError maps an evaluation refusal to a response. The
// engine only returns errors for requests it never evaluated; everything
// past validation comes back as a result, including fail-closed blocks.
func (h *ClearanceHandler) handleEvaluateError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var valErr *clearance.ValidationError
	if errors.As(err, &valErr) {
		if h.metrics != nil {
			h.metrics.RecordValidationFailure()
		}
		h.logger.WarnContext(ctx, "clearance request rejected",
			"request_id", requestID,
			"invalid_fields", len(valErr.Fields),
			"error", err,
		)
	} else {
		h.logger.ErrorContext(ctx, "clearance evaluation refused",
			"request_id", requestID,
			"error", err,
		)
	}

	if werr := WriteErrorResponse(w, HandleError(err)); werr != nil {
		h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
	}
}

// record updates the telemetry counters for one completed evaluation.
func (h *ClearanceHandler) record(req *clearance.Request, result *clearance.EvaluationResult) {
	if h.metrics == nil {
		return
	}

	outcome := metrics.OutcomeLabel(result.Allowed, result.BlockedBy, len(result.Warnings))
	h.metrics.RecordEvaluation(strings.TrimSpace(req.OrganizationID), outcome, result.Duration)

	if !result.Allowed && result.BlockedBy != clearance.SystemErrorCode {
		h.metrics.RecordBlock(result.BlockedBy)
	}
	for _, warning := range result.Warnings {
		h.metrics.RecordWarning(string(warning.Rule))
	}
}
