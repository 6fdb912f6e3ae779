package audit

import "strings"

// MaskPhone masks a phone number for storage in the decision record,
// replacing every digit except the last four with asterisks. Non-digit
// characters such as a leading + are preserved.
//
// This keeps enough of the number to correlate entries against dialer
// logs while preventing full exposure of the target number.
//
// Example: "+15551234567" -> "+*******4567"
//
// Returns an empty string if the phone number is empty. Numbers with
// four or fewer digits are masked entirely.
func MaskPhone(phone string) string {
	if phone == "" {
		return ""
	}

	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}

	// Too short to safely keep a visible suffix
	if digits <= 4 {
		return strings.Repeat("*", len(phone))
	}

	var b strings.Builder
	b.Grow(len(phone))
	seen := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			seen++
			if seen <= digits-4 {
				b.WriteRune('*')
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
