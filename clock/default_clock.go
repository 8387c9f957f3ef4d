package clock

import (
	"time"
)

// DefaultClock is the wall clock.
type DefaultClock struct{}

// NewDefaultClock returns the wall clock.
func NewDefaultClock() Clock {
	return DefaultClock{}
}

// Now returns time.Now().
func (DefaultClock) Now() time.Time {
	return time.Now()
}

// TickAfter returns time.After(d).
func (DefaultClock) TickAfter(d time.Duration) <-chan time.Time {
	return time.After(d)
}
