package rules

import (
	"context"
	"fmt"

	"veritel-hq/dialguard/pkg/clearance"
)

// CodeOutsideCallingWindow is the block code raised by the calling window
// rule.
const CodeOutsideCallingWindow = "OUTSIDE_CALLING_WINDOW"

// CallingWindow blocks attempts outside the target's local calling hours.
// The window is evaluated in the target's timezone, resolved from the
// phone number: calling at 09:00 server time is no defense when it is
// 06:00 where the phone rings.
//
// A timezone that cannot be resolved is an error, never a fallback to the
// server's zone. Guessing could permit a call outside the target's legal
// window.
type CallingWindow struct {
	timezones clearance.TimezoneResolver
	start     int // first permitted local hour, inclusive
	end       int // first forbidden local hour
}

// NewCallingWindow creates the calling window rule. Hours are local to
// the target: an attempt is permitted when start <= local hour < end.
func NewCallingWindow(timezones clearance.TimezoneResolver, start, end int) *CallingWindow {
	return &CallingWindow{
		timezones: timezones,
		start:     start,
		end:       end,
	}
}

// Evaluate implements clearance.Evaluator.
func (r *CallingWindow) Evaluate(ctx context.Context, attempt *clearance.AttemptContext) (clearance.Verdict, error) {
	loc, err := r.timezones.Resolve(ctx, attempt.PhoneNumber)
	if err != nil {
		return clearance.Verdict{}, fmt.Errorf("resolving target timezone: %w", err)
	}

	local := attempt.OccurredAt.In(loc)
	hour := local.Hour()
	if hour < r.start || hour >= r.end {
		return clearance.Block(CodeOutsideCallingWindow, fmt.Sprintf(
			"local time %s is outside the %02d:00-%02d:00 calling window",
			local.Format("15:04"), r.start, r.end,
		)), nil
	}
	return clearance.Allow(), nil
}
