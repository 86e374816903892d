package ecs

import "time"

// Clock advances the tick counter once per Advance call and hands out
// the stable Now snapshot used for the remainder of that tick.
type Clock struct {
	tick Tick
	last time.Time
	now  Now
}

// NewClock starts a clock at tick 0, anchored to the current wall time.
func NewClock() *Clock {
	start := time.Now()
	c := &Clock{last: start}
	c.now = Now{Tick: 0, Time: start, Delta: 0}
	return c
}

// Now returns the snapshot captured by the most recent Advance (or the
// zero-delta startup snapshot if Advance has not run yet).
func (c *Clock) Now() Now {
	return c.now
}

// Advance moves the clock forward one tick, per SPEC_FULL.md §5 ordering
// guarantee (e): the clock ticks last, so Now() is stable for every
// binding and system that ran earlier in the same tick.
func (c *Clock) Advance() Now {
	t := time.Now()
	delta := t.Sub(c.last)
	c.tick++
	c.last = t
	c.now = Now{Tick: c.tick, Time: t, Delta: delta}
	return c.now
}
