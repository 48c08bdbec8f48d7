package track

import (
	"sync"
	"time"
)

// DefaultTickInterval is the coarsest granularity at which the live clock
// notifies observers. Display code never needs finer than this.
const DefaultTickInterval = 250 * time.Millisecond

// LiveClock turns a store snapshot into a continuously correct running
// duration without polling the store. The store's accumulated seconds are the
// source of truth for completed time; the clock only contributes the delta
// since the snapshot was taken, and that delta is discarded and recomputed
// from scratch whenever the status or the open segment changes.
type LiveClock struct {
	mu sync.Mutex

	status       Status
	baseline     int64 // store-confirmed seconds, excludes the running segment
	offset       int64 // running-segment seconds already elapsed at snapshot time
	segmentStart time.Time
	tickStart    time.Time // local wall clock when ticking began
	ticking      bool

	sched    Scheduler
	interval time.Duration
	cancel   CancelFunc
	onTick   func(seconds int64)
}

// NewLiveClock returns a clock that schedules its tick loop on sched. A nil
// sched yields a clock usable only via Seconds (no notifications), which is
// what most tests want.
func NewLiveClock(sched Scheduler) *LiveClock {
	return &LiveClock{sched: sched, interval: DefaultTickInterval}
}

// OnTick registers the observer invoked on every tick while the session is
// ACTIVE. Must be called before the first Update.
func (c *LiveClock) OnTick(fn func(seconds int64)) { c.onTick = fn }

// Update replaces the clock's snapshot atomically. serverNow is the store's
// reference time at fetch; pass the zero value to fall back to localNow.
// Any status or segment change resets the offset and the tick baseline so no
// residual delta leaks from a prior segment.
func (c *LiveClock) Update(s *Session, serverNow, localNow time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var segStart time.Time
	status := StatusInactive
	var baseline int64
	if s != nil {
		status = s.Status
		baseline = s.AccumulatedSeconds
		if s.SegmentStartedAt != nil {
			segStart = *s.SegmentStartedAt
		}
	}

	changed := status != c.status || !segStart.Equal(c.segmentStart)
	c.status = status
	c.baseline = baseline
	c.segmentStart = segStart
	if changed {
		c.offset = 0
		c.stopLocked()
	}

	if status != StatusActive || segStart.IsZero() {
		// PAUSED/INACTIVE freeze at the baseline. ACTIVE with a missing
		// start is a data inconsistency: degrade to the baseline too.
		c.offset = 0
		c.stopLocked()
		return
	}

	ref := serverNow
	if ref.IsZero() {
		ref = localNow
	}
	offset := int64(ref.Sub(segStart) / time.Second)
	if offset < 0 {
		offset = 0 // segment start in the future: clock skew, clamp
	}
	c.offset = offset
	c.tickStart = localNow
	c.startLocked()
}

// Seconds returns the live duration at localNow: baseline + offset + local
// delta while ACTIVE, exactly the baseline otherwise.
func (c *LiveClock) Seconds(localNow time.Time) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.secondsLocked(localNow)
}

func (c *LiveClock) secondsLocked(localNow time.Time) int64 {
	if c.status != StatusActive || c.segmentStart.IsZero() {
		return c.baseline
	}
	delta := int64(localNow.Sub(c.tickStart) / time.Second)
	if delta < 0 {
		delta = 0
	}
	return c.baseline + c.offset + delta
}

// Resync folds the elapsed local delta into the offset and restarts the tick
// baseline at localNow. Called when the process regains focus so a throttled
// or suspended timer never inflates the delta.
func (c *LiveClock) Resync(localNow time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusActive || c.segmentStart.IsZero() {
		return
	}
	delta := int64(localNow.Sub(c.tickStart) / time.Second)
	if delta > 0 {
		c.offset += delta
	}
	c.tickStart = localNow
}

// Stop tears down the tick loop. The clock remains queryable via Seconds.
func (c *LiveClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *LiveClock) startLocked() {
	if c.ticking || c.sched == nil || c.onTick == nil {
		return
	}
	c.ticking = true
	c.cancel = c.sched.Repeat(c.interval, func(now time.Time) {
		c.mu.Lock()
		secs := c.secondsLocked(now)
		fn := c.onTick
		c.mu.Unlock()
		if fn != nil {
			fn(secs)
		}
	})
}

func (c *LiveClock) stopLocked() {
	if !c.ticking {
		return
	}
	c.ticking = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
