package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// OrganizationIDKey is the context key for organization identifiers.
	OrganizationIDKey contextKey = "organization_id"

	// AccountIDKey is the context key for account identifiers.
	AccountIDKey contextKey = "account_id"

	// EvaluationIDKey is the context key for evaluation identifiers.
	EvaluationIDKey contextKey = "evaluation_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithOrganizationID adds an organization identifier to the context.
func WithOrganizationID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, OrganizationIDKey, orgID)
}

// GetOrganizationID retrieves the organization identifier from the context.
func GetOrganizationID(ctx context.Context) string {
	if orgID, ok := ctx.Value(OrganizationIDKey).(string); ok {
		return orgID
	}
	return ""
}

// WithAccountID adds an account identifier to the context.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, AccountIDKey, accountID)
}

// GetAccountID retrieves the account identifier from the context.
func GetAccountID(ctx context.Context) string {
	if accountID, ok := ctx.Value(AccountIDKey).(string); ok {
		return accountID
	}
	return ""
}

// WithEvaluationID adds an evaluation identifier to the context.
func WithEvaluationID(ctx context.Context, evaluationID string) context.Context {
	return context.WithValue(ctx, EvaluationIDKey, evaluationID)
}

// GetEvaluationID retrieves the evaluation identifier from the context.
func GetEvaluationID(ctx context.Context) string {
	if evaluationID, ok := ctx.Value(EvaluationIDKey).(string); ok {
		return evaluationID
	}
	return ""
}

// ContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func ContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	if orgID := GetOrganizationID(ctx); orgID != "" {
		fields = append(fields, "organization_id", orgID)
	}

	if accountID := GetAccountID(ctx); accountID != "" {
		fields = append(fields, "account_id", accountID)
	}

	if evaluationID := GetEvaluationID(ctx); evaluationID != "" {
		fields = append(fields, "evaluation_id", evaluationID)
	}

	return fields
}

// FromContext returns the logger enriched with every request-scoped field
// present on the context. Callers that hold a request context should prefer
// this over the bare logger so request IDs line up across log lines.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
