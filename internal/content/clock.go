package content

import (
	"sync"
	"time"
)

// Epoch is the moment the simulated host believes it booted into.
var Epoch = time.Date(1995, time.December, 11, 1, 45, 0, 0, Zone) //nolint:gochecknoglobals

// Zone is the simulated host's local time zone.
var Zone = time.FixedZone("PST", -8*60*60) //nolint:gochecknoglobals

// Clock reports simulated wall time: Epoch plus whatever real time has
// elapsed since the clock was created.  The zero value is not usable;
// construct with NewClock.
type Clock struct {
	mu    sync.Mutex
	epoch time.Time
	start time.Time
	now   func() time.Time
	skew  time.Duration
}

// NewClock returns a Clock anchored at Epoch.  now supplies real time
// and defaults to time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{epoch: Epoch, start: now(), now: now}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch.Add(c.now().Sub(c.start) + c.skew)
}

// Advance moves simulated time forward by d without waiting.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.skew += d
	c.mu.Unlock()
}

// Since returns simulated time elapsed since t.
func (c *Clock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}
