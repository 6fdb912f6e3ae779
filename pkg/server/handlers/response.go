package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"veritel-hq/dialguard/pkg/server/types"
)

// WriteJSONResponse encodes data as the response body with the given
// status. Encoding failures after the header is written can only be
// reported to the caller for logging.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("encoding response body: %w", err)
	}
	return nil
}

// WriteErrorResponse writes the error envelope with the status its
// category maps to.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.Error.HTTPStatusCode(), errResp)
}
