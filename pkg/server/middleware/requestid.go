package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"veritel-hq/dialguard/pkg/telemetry/logging"
)

// RequestIDHeader is the HTTP header for request ID.
const RequestIDHeader = "X-Request-ID"

// maxClientRequestIDLen bounds client-supplied correlation IDs before
// they reach the decision record and logs.
const maxClientRequestIDLen = 128

// RequestIDMiddleware assigns a request ID to each request and carries
// it through the context, the logging context and the X-Request-ID
// response header. A client-supplied X-Request-ID is reused when it
// passes sanitization, so dialer-side correlation IDs survive into the
// decision record; otherwise a fresh ID is generated.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := sanitizeRequestID(r.Header.Get(RequestIDHeader))
		if requestID == "" {
			requestID = newRequestID()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = logging.WithRequestID(ctx, requestID)

		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// newRequestID returns a UUIDv4 with the dashes stripped: 32 hex
// characters, safe for log lines and audit rows.
func newRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// sanitizeRequestID accepts a client-supplied ID only when it is
// non-empty, within the length bound and printable ASCII. Anything else
// returns empty so the caller generates a fresh ID instead of echoing
// junk into the audit trail.
func sanitizeRequestID(id string) string {
	if id == "" || len(id) > maxClientRequestIDLen {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= 0x20 || id[i] >= 0x7f {
			return ""
		}
	}
	return id
}

// GetRequestID extracts the request ID from the context, or empty
// string if the middleware did not run.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
