// Package handlers provides HTTP request handlers for the API server.
//
// This package implements the endpoint handlers for clearance decisions,
// attempt reporting, and decision record reads. Each handler is
// responsible for parsing its request, calling into the domain layer, and
// formatting the response.
//
// # Handler Types
//
// Decision handlers:
//   - ClearanceHandler: POST /v1/clearances, one pre-dial decision
//
// Attempt log handlers:
//   - AttemptsHandler: POST /v1/attempts, record a completed dial
//
// Decision record handlers:
//   - AuditHandler: GET /v1/audit listing and GET /v1/audit/export
//
// # Request Flow
//
// Each handler follows a consistent pattern:
//
//  1. Check the HTTP method
//  2. Parse the request body or query parameters
//  3. Call the domain layer through a narrow interface
//  4. Record telemetry
//  5. Write the response as JSON
//  6. Map failures to the standard error envelope
//
// # Status Codes
//
// A blocking verdict is not an error: POST /v1/clearances returns 200
// with allowed=false when a rule blocks the attempt, and 200 with
// blocked_by="system_error" when the engine failed closed. Error status
// codes mean the request never produced a decision:
//
//   - 400: malformed body, invalid fields, bad query parameters
//   - 404: unknown path
//   - 405: wrong method
//   - 500: a backing store refused a write or read
//   - 504: the request timed out before evaluation started
//
// # Error Handling
//
// All failures use the same envelope:
//
//	{
//	  "error": {
//	    "message": "invalid request: organization_id: field is required",
//	    "type": "invalid_request_error",
//	    "param": "organization_id",
//	    "code": "missing_field"
//	  }
//	}
//
// # Dependencies
//
// Handlers depend on narrow interfaces (Engine, AttemptLog, DecisionLog,
// Metrics) declared in this package and satisfied by the concrete engine,
// stores, and telemetry collector. Tests substitute scripted fakes.
package handlers
