package service

import "time"

// Clock supplies the current time to every expiry computation. The
// services never read the system clock directly so tests can pin time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// FixedClock is a Clock pinned to a settable instant, for tests.
type FixedClock struct {
	Time time.Time
}

func (c *FixedClock) Now() time.Time { return c.Time }

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) { c.Time = c.Time.Add(d) }
