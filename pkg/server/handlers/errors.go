package handlers

import (
	"errors"

	"veritel-hq/dialguard/pkg/clearance"
	"veritel-hq/dialguard/pkg/server/types"
)

// HandleError converts domain error types to the standard error envelope.
//
// Example usage:
//
//	if err != nil {
//	    errResp := HandleError(err)
//	    WriteErrorResponse(w, errResp)
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var valErr *clearance.ValidationError
	if errors.As(err, &valErr) {
		return validationErrorResponse(valErr)
	}

	// The engine refuses requests whose context was already cancelled;
	// nothing was evaluated or audited, so the caller may retry.
	if errors.Is(err, clearance.ErrNotStarted) {
		return types.NewGatewayTimeoutError("request cancelled before evaluation started")
	}

	return types.NewServerError("An internal error occurred. Please try again later.")
}

// validationErrorResponse maps a request validation failure onto the
// envelope. The validator already mints stable codes per field
// (INVALID_PHONE, REQUIRED, ...); the first failed field's code becomes
// the envelope code, and the message summarizes every invalid field.
func validationErrorResponse(valErr *clearance.ValidationError) *types.ErrorResponse {
	code := types.CodeValidationFailed
	if len(valErr.Fields) > 0 {
		code = valErr.Fields[0].Code
	}
	return types.NewInvalidRequestError(code, valErr.Error())
}
