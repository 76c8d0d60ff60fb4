package pricing

import "time"

// Clock supplies the current time. Injected so that month-dependent
// features and hour-bucketed mock prices are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}
