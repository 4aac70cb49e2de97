// Package session tracks elapsed wall-clock time against an optional run
// duration.
package session

import "time"

// Clock is fixed at construction; it has no pause or resume.
type Clock struct {
	start time.Time
	limit time.Duration
	now   func() time.Time
}

// Start begins a clock at now(). A limit <= 0 means unbounded.
func Start(now func() time.Time, limit time.Duration) *Clock {
	if now == nil {
		now = time.Now
	}
	if limit < 0 {
		limit = 0
	}
	return &Clock{start: now(), limit: limit, now: now}
}

func (c *Clock) StartedAt() time.Time   { return c.start }
func (c *Clock) Limit() time.Duration   { return c.limit }
func (c *Clock) Bounded() bool          { return c.limit > 0 }
func (c *Clock) Elapsed() time.Duration { return c.now().Sub(c.start) }

// Expired is always false for an unbounded clock.
func (c *Clock) Expired() bool {
	if !c.Bounded() {
		return false
	}
	return c.Elapsed() >= c.limit
}

// Remaining is zero for unbounded or expired clocks.
func (c *Clock) Remaining() time.Duration {
	if !c.Bounded() {
		return 0
	}
	if r := c.limit - c.Elapsed(); r > 0 {
		return r
	}
	return 0
}
