package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"veritel-hq/dialguard/pkg/server/types"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a
// 500 Internal Server Error in the standard error envelope. The panic and
// stack trace are logged for debugging but never exposed to clients.
//
// A panic inside the decision engine itself never reaches this middleware:
// the engine converts it into a fail-closed blocking result. This recovery
// covers everything outside the engine boundary.
//
// Example usage:
//
//	handler = RecoveryMiddleware(logger)(handler)
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					// net/http uses this sentinel to abort a response;
					// suppressing it would break hijacked connections.
					if err == http.ErrAbortHandler {
						panic(err)
					}

					requestID := GetRequestID(r.Context())
					stack := debug.Stack()

					logger.ErrorContext(r.Context(), "panic in handler",
						"error", err,
						"request_id", requestID,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(stack),
					)

					errResp := types.NewServerError(
						"An internal error occurred. Please try again later.",
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)

					// Encoding errors past this point are unrecoverable.
					_ = json.NewEncoder(w).Encode(errResp)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
