package logging

import (
	"log/slog"
	"regexp"
	"strings"

	"veritel-hq/dialguard/pkg/audit"
)

// Redactor masks phone numbers in log output. Attribute keys that name
// a phone get the same digit mask the audit record uses, keeping the
// last four digits for correlation. Free-form strings are scrubbed with
// a pattern match as a backstop for numbers embedded in messages and
// error text.
type Redactor struct {
	phonePattern *regexp.Regexp
}

// phoneKeys are attribute keys whose values are always phone numbers.
// "masked_phone" is absent deliberately: its value is already masked.
var phoneKeys = []string{
	"phone", "phone_number", "target", "dialed_number",
}

// NewRedactor creates a redactor with the built-in phone pattern.
func NewRedactor() *Redactor {
	return &Redactor{
		phonePattern: regexp.MustCompile(`\+?1?[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
	}
}

// RedactString scrubs phone-shaped substrings from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	return r.phonePattern.ReplaceAllStringFunc(value, audit.MaskPhone)
}

// RedactAttr returns the attribute with any phone content masked.
// Group attributes are redacted recursively.
func (r *Redactor) RedactAttr(attr slog.Attr) slog.Attr {
	switch attr.Value.Kind() {
	case slog.KindString:
		if r.isPhoneKey(attr.Key) {
			return slog.String(attr.Key, audit.MaskPhone(attr.Value.String()))
		}
		return slog.String(attr.Key, r.RedactString(attr.Value.String()))
	case slog.KindGroup:
		group := attr.Value.Group()
		redacted := make([]any, 0, len(group))
		for _, inner := range group {
			redacted = append(redacted, r.RedactAttr(inner))
		}
		return slog.Group(attr.Key, redacted...)
	default:
		return attr
	}
}

// isPhoneKey reports whether a key names a phone number field.
func (r *Redactor) isPhoneKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range phoneKeys {
		if lower == k {
			return true
		}
	}
	return false
}
