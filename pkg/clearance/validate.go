package clearance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// requestValidator normalizes and validates inbound requests before they
// reach the pipeline.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() requestValidator {
	return requestValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// normalize returns a cleaned copy of the request or a ValidationError
// listing every malformed field. The original request is not modified.
func (rv requestValidator) normalize(req *Request) (*Request, *ValidationError) {
	normalized := *req
	normalized.OrganizationID = strings.TrimSpace(req.OrganizationID)
	normalized.AccountID = strings.TrimSpace(req.AccountID)
	normalized.JurisdictionCode = strings.ToUpper(strings.TrimSpace(req.JurisdictionCode))

	var fields []FieldError

	if err := rv.validate.Struct(&normalized); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, FieldError{
					Field:   requestFieldName(fe.Field()),
					Code:    requestFieldCode(fe.Tag()),
					Message: requestFieldMessage(fe),
				})
			}
		} else {
			fields = append(fields, FieldError{
				Field:   "request",
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			})
		}
	}

	if strings.TrimSpace(req.PhoneNumber) != "" {
		phone, err := NormalizePhone(req.PhoneNumber)
		if err != nil {
			fields = append(fields, FieldError{
				Field:   "phone_number",
				Code:    "INVALID_PHONE",
				Message: err.Error(),
			})
		} else {
			normalized.PhoneNumber = phone
		}
	}

	if len(fields) > 0 {
		return nil, NewValidationError(fields...)
	}
	return &normalized, nil
}

// requestFieldName maps a struct field name to its wire name.
func requestFieldName(structField string) string {
	switch structField {
	case "OrganizationID":
		return "organization_id"
	case "AccountID":
		return "account_id"
	case "PhoneNumber":
		return "phone_number"
	case "JurisdictionCode":
		return "jurisdiction_code"
	case "ClaimOpenedAt":
		return "claim_opened_at"
	default:
		return structField
	}
}

// requestFieldCode maps a failed validation tag to a stable error code.
func requestFieldCode(tag string) string {
	switch tag {
	case "required":
		return "REQUIRED"
	case "max":
		return "TOO_LONG"
	case "len", "alpha":
		return "INVALID_JURISDICTION"
	default:
		return "INVALID_FIELD"
	}
}

func requestFieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "alpha":
		return "must contain only letters"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// NormalizePhone canonicalizes a phone number to E.164. Bare 10-digit
// numbers and 11-digit numbers with a leading 1 are treated as NANP and
// prefixed with +1; numbers already carrying a + keep their country code.
// Formatting characters (spaces, dashes, dots, parentheses) are stripped.
func NormalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	var digits strings.Builder
	hasPlus := false
	for i, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+':
			if i != 0 {
				return "", fmt.Errorf("'+' is only valid as the first character")
			}
			hasPlus = true
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// formatting only
		default:
			return "", fmt.Errorf("unexpected character %q in phone number", r)
		}
	}

	num := digits.String()
	switch {
	case hasPlus:
		if len(num) < 8 || len(num) > 15 {
			return "", fmt.Errorf("international number must have 8 to 15 digits, got %d", len(num))
		}
		return "+" + num, nil
	case len(num) == 10:
		return "+1" + num, nil
	case len(num) == 11 && num[0] == '1':
		return "+" + num, nil
	default:
		return "", fmt.Errorf("number must be 10 digits, 11 digits with leading 1, or E.164 with '+'")
	}
}
