package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"veritel-hq/dialguard/pkg/clearance"
	"veritel-hq/dialguard/pkg/server/middleware"
	"veritel-hq/dialguard/pkg/server/types"
	"veritel-hq/dialguard/pkg/sources/history"
	"veritel-hq/dialguard/pkg/telemetry/logging"
)

// AttemptsHandler serves POST /v1/attempts: dialers report the outcome of
// each contact attempt here after the call completes. The frequency and
// cooldown rules count against this log, so a dialer that skips reporting
// weakens its own caps.
type AttemptsHandler struct {
	attempts     AttemptLog
	reservations ReservationLedger
	logger       *slog.Logger
}

// NewAttemptsHandler creates the attempt reporting handler. A nil
// reservations ledger leaves reservations to lapse at their TTL.
func NewAttemptsHandler(attempts AttemptLog, reservations ReservationLedger, logger *slog.Logger) *AttemptsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttemptsHandler{
		attempts:     attempts,
		reservations: reservations,
		logger:       logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *AttemptsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var attempt history.Attempt
	if err := decodeJSONBody(r, &attempt); err != nil {
		h.logger.WarnContext(ctx, "failed to parse attempt",
			"request_id", requestID,
			"error", err,
		)

		if werr := WriteErrorResponse(w, HandleError(err)); werr != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}

	if err := attempt.Validate(); err != nil {
		errResp := types.NewInvalidRequestError(types.CodeValidationFailed, err.Error())
		if werr := WriteErrorResponse(w, errResp); werr != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}

	// The attempt log must store the same canonical number the engine
	// counts against, or the frequency and cooldown rules undercount.
	phone, err := clearance.NormalizePhone(attempt.PhoneNumber)
	if err != nil {
		errResp := types.NewInvalidRequestError(types.CodeInvalidPhone, fmt.Sprintf("phone_number: %v", err))
		if werr := WriteErrorResponse(w, errResp); werr != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}
	attempt.PhoneNumber = phone

	if err := h.attempts.Record(ctx, &attempt); err != nil {
		h.logger.ErrorContext(ctx, "failed to record attempt",
			"request_id", requestID,
			"organization_id", attempt.OrganizationID,
			"error", err,
		)

		errResp := types.NewServerError("Failed to record the attempt. Please retry.")
		if werr := WriteErrorResponse(w, errResp); werr != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", werr)
		}
		return
	}

	// The recorded attempt now counts against the frequency cap, so the
	// reservation that covered it must stop counting.
	if h.reservations != nil {
		h.reservations.Settle(attempt.OrganizationID, attempt.PhoneNumber)
	}

	logger := logging.FromContext(ctx, h.logger)
	logger.InfoContext(ctx, "attempt recorded",
		"attempt_id", attempt.ID,
		"organization_id", attempt.OrganizationID,
		"disposition", attempt.Disposition,
		"evaluation_id", attempt.EvaluationID,
	)

	if werr := WriteJSONResponse(w, http.StatusCreated, &attempt); werr != nil {
		h.logger.ErrorContext(ctx, "failed to write attempt response", "error", werr)
	}
}
