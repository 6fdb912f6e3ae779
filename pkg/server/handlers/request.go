package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"veritel-hq/dialguard/pkg/server/types"
)

const (
	// MaxRequestBodySize is the maximum allowed request body size (1MB).
	// Clearance and attempt payloads are a few hundred bytes; anything
	// near this limit is malformed or hostile.
	MaxRequestBodySize = 1 * 1024 * 1024
)

// RequestError represents a request parsing or validation error. The
// message names the offending field, so the envelope needs no separate
// field slot.
type RequestError struct {
	Message string
	Code    string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to the standard error envelope.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Code, e.Message)
}

// decodeJSONBody parses an HTTP request body into dst.
// It enforces the size limit and rejects empty bodies and invalid JSON.
func decodeJSONBody(r *http.Request, dst interface{}) error {
	limitedReader := io.LimitReader(r.Body, MaxRequestBodySize)

	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) >= MaxRequestBodySize {
		return &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Code:    types.CodeRequestTooLarge,
		}
	}

	if len(body) == 0 {
		return &RequestError{
			Message: "request body is required",
			Code:    types.CodeRequired,
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
		}
	}

	return nil
}
