package scheduler

import (
	"sync"
	"time"
)

// FakeClock is a manually advanced Clock. Timers fire synchronously from
// Advance, in deadline order, on the calling goroutine.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *FakeClock
	deadline time.Time
	fn       func()
	done     bool
}

// NewFakeClock creates a FakeClock reading start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake current time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once the clock is advanced past d
func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{clock: c, deadline: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer whose deadline
// is reached. Timers armed by fired callbacks fire too if they fall due
// within the same advance.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		c.prune()
		next := c.nextDue(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.deadline
		next.done = true
		c.mu.Unlock()

		next.fn()
	}
}

// prune drops fired and stopped timers; callers hold mu
func (c *FakeClock) prune() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	clear(c.timers[len(live):])
	c.timers = live
}

// Pending returns the number of armed timers
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// NextDeadline returns the earliest armed deadline
func (c *FakeClock) NextDeadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.nextDue(time.Time{})
	if t == nil {
		return time.Time{}, false
	}
	return t.deadline, true
}

// nextDue returns the earliest pending timer due by target. A zero target
// means no bound.
func (c *FakeClock) nextDue(target time.Time) *fakeTimer {
	var next *fakeTimer
	for _, t := range c.timers {
		if t.done {
			continue
		}
		if !target.IsZero() && t.deadline.After(target) {
			continue
		}
		if next == nil || t.deadline.Before(next.deadline) {
			next = t
		}
	}
	return next
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	return true
}
