package clock

import (
	"time"
)

// Clock is an interface that provides a time functions for the execution
// contexts and caches. Production code uses the wall clock while tests swap in
// a TestClock to control time explicitly.
type Clock interface {
	// Now returns the current local time (as defined by the Clock).
	Now() time.Time

	// TickAfter returns a channel that will receive a tick after the
	// specified duration has passed, as measured by the Clock.
	TickAfter(duration time.Duration) <-chan time.Time
}
