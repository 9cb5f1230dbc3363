package replay

import "time"

// virtualClock is a manual time source. Timers registered through Schedule
// fire only when Advance moves past their deadline, so a script replays
// identically regardless of wall-clock speed.
type virtualClock struct {
	epoch time.Time
	now   time.Duration
	seq   int
	timer []timer
}

type timer struct {
	due time.Duration
	seq int
	fn  func()
}

func newVirtualClock(epoch time.Time) *virtualClock {
	return &virtualClock{epoch: epoch}
}

// Now returns the current virtual time.
func (c *virtualClock) Now() time.Time {
	return c.epoch.Add(c.now)
}

// Schedule registers fn to run d after the current virtual time.
// Non-positive delays run fn immediately.
func (c *virtualClock) Schedule(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	c.seq++
	c.timer = append(c.timer, timer{due: c.now + d, seq: c.seq, fn: fn})
}

// Advance moves time forward to t, firing due timers in deadline order.
// Timers scheduled by a firing timer run in the same pass if they fall due.
func (c *virtualClock) Advance(t time.Duration) {
	for {
		i := c.next()
		if i < 0 || c.timer[i].due > t {
			break
		}
		tm := c.timer[i]
		c.timer = append(c.timer[:i], c.timer[i+1:]...)
		if tm.due > c.now {
			c.now = tm.due
		}
		tm.fn()
	}
	if t > c.now {
		c.now = t
	}
}

// Drain fires every pending timer.
func (c *virtualClock) Drain() {
	for len(c.timer) > 0 {
		c.Advance(c.latest())
	}
}

// Pending counts timers not yet fired.
func (c *virtualClock) Pending() int {
	return len(c.timer)
}

func (c *virtualClock) next() int {
	best := -1
	for i, tm := range c.timer {
		if best < 0 || tm.due < c.timer[best].due ||
			(tm.due == c.timer[best].due && tm.seq < c.timer[best].seq) {
			best = i
		}
	}
	return best
}

func (c *virtualClock) latest() time.Duration {
	var t time.Duration
	for _, tm := range c.timer {
		t = max(t, tm.due)
	}
	return t
}
