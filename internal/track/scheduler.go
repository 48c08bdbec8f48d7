package track

import (
	"sync"
	"time"
)

// CancelFunc tears down a scheduled timer. Safe to call more than once.
type CancelFunc func()

// Scheduler is the timing port used by the live clock and the idle monitor.
// Any implementation satisfying the cancellation contract works; tests use a
// manual fake.
type Scheduler interface {
	// Repeat invokes fn every interval until cancelled.
	Repeat(interval time.Duration, fn func(now time.Time)) CancelFunc
	// After invokes fn once after d unless cancelled first.
	After(d time.Duration, fn func()) CancelFunc
}

// wallScheduler runs timers on the real wall clock.
type wallScheduler struct{}

// WallClock returns a Scheduler backed by time.Ticker and time.Timer.
func WallClock() Scheduler { return wallScheduler{} }

func (wallScheduler) Repeat(interval time.Duration, fn func(now time.Time)) CancelFunc {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				fn(now)
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

func (wallScheduler) After(d time.Duration, fn func()) CancelFunc {
	timer := time.AfterFunc(d, fn)
	return func() { timer.Stop() }
}
