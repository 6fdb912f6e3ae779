package types

import (
	"net/http"

	"github.com/google/uuid"
)

// ErrorResponse is the JSON error envelope returned for every failed
// request. Decision outcomes are not errors: a blocked attempt is a
// successful evaluation and is returned as a normal result body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a unique occurrence id, a stable machine-readable
// code, and a severity. The id is minted per occurrence so a caller can
// quote it when reporting a problem; the code is what clients branch on.
type ErrorDetail struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Error severities. Client mistakes are MEDIUM; anything that signals a
// fault in the service itself is HIGH.
const (
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
)

// Stable error codes. Field-level validation codes (INVALID_PHONE,
// INVALID_JURISDICTION, ...) originate in the clearance validator and
// flow through the envelope unchanged.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidPhone     = "INVALID_PHONE"
	CodeRequired         = "REQUIRED"
	CodeInvalidJSON      = "INVALID_JSON"
	CodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	CodeRequestTimeout   = "REQUEST_TIMEOUT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// statusByCode lists the codes that are not plain client errors. Every
// code absent from this map maps to 400.
var statusByCode = map[string]int{
	CodeRequestTimeout: http.StatusGatewayTimeout,
	CodeInternalError:  http.StatusInternalServerError,
}

// HTTPStatusCode maps the error code to its HTTP status. Validation
// codes, including the ones minted by the clearance validator, are all
// client errors.
func (e *ErrorDetail) HTTPStatusCode() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusBadRequest
}

// NewErrorResponse builds an error envelope with a fresh occurrence id.
func NewErrorResponse(code, message, severity string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{
		ID:       uuid.NewString(),
		Code:     code,
		Message:  message,
		Severity: severity,
	}}
}

// NewInvalidRequestError reports a malformed or incomplete request.
func NewInvalidRequestError(code, message string) *ErrorResponse {
	return NewErrorResponse(code, message, SeverityMedium)
}

// NewServerError reports an internal failure without exposing detail.
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(CodeInternalError, message, SeverityHigh)
}

// NewGatewayTimeoutError reports a request that exceeded the server's
// request timeout.
func NewGatewayTimeoutError(message string) *ErrorResponse {
	return NewErrorResponse(CodeRequestTimeout, message, SeverityHigh)
}
