package clearance

import "time"

// Clock is the engine's time source. It is injectable so that the
// time-of-day and windowed rules are deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
