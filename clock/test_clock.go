package clock

import (
	"sync"
	"time"
)

// timer is a TickAfter channel waiting for the test time to reach at.
type timer struct {
	at time.Time
	ch chan time.Time
}

// TestClock is a Clock whose time only moves when the test says so.
type TestClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []timer
}

// A compile-time check to ensure TestClock implements Clock.
var _ Clock = (*TestClock)(nil)

// NewTestClock returns a test clock set to start.
func NewTestClock(start time.Time) *TestClock {
	return &TestClock{now: start}
}

// Now returns the test time.
func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// TickAfter returns a channel that receives the test time once it has moved
// d past the current test time. A non-positive d ticks right away. The timer
// is registered before TickAfter returns.
func (c *TestClock) TickAfter(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}

	c.pending = append(c.pending, timer{at: c.now.Add(d), ch: ch})

	return ch
}

// SetTime moves the test time to now and fires every timer that is due.
// Moving the time backwards fires nothing.
func (c *TestClock) SetTime(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now

	remaining := c.pending[:0]
	for _, t := range c.pending {
		if t.at.After(now) {
			remaining = append(remaining, t)
			continue
		}

		t.ch <- now
	}
	c.pending = remaining
}

// Advance moves the test time forward by d.
func (c *TestClock) Advance(d time.Duration) {
	c.mu.Lock()
	now := c.now.Add(d)
	c.mu.Unlock()

	c.SetTime(now)
}

// PendingTickers returns the number of timers that have not fired yet.
func (c *TestClock) PendingTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}
