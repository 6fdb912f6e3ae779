package middleware

// contextKey keeps request-scoped values unexported-typed so other
// packages cannot collide with them.
type contextKey string

const (
	// RequestIDKey carries the correlation ID assigned by
	// RequestIDMiddleware.
	RequestIDKey contextKey = "request_id"

	// StartTimeKey carries the arrival time used for latency fields in
	// the access log.
	StartTimeKey contextKey = "start_time"
)
