package track_test

import (
	"sync"
	"time"

	"github.com/rbeaumont/shiftclock/internal/track"
)

// fakeScheduler records timers instead of running them, letting tests fire
// countdowns deterministically.
type fakeScheduler struct {
	mu     sync.Mutex
	repeat []*fakeRepeat
	after  []*fakeAfter
}

type fakeRepeat struct {
	interval  time.Duration
	fn        func(time.Time)
	cancelled bool
}

type fakeAfter struct {
	d         time.Duration
	fn        func()
	cancelled bool
}

func newFakeScheduler() *fakeScheduler { return &fakeScheduler{} }

func (s *fakeScheduler) Repeat(interval time.Duration, fn func(now time.Time)) track.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &fakeRepeat{interval: interval, fn: fn}
	s.repeat = append(s.repeat, r)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		r.cancelled = true
	}
}

func (s *fakeScheduler) After(d time.Duration, fn func()) track.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &fakeAfter{d: d, fn: fn}
	s.after = append(s.after, a)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		a.cancelled = true
	}
}

func (s *fakeScheduler) repeats() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.repeat)
}

func (s *fakeScheduler) activeRepeats() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.repeat {
		if !r.cancelled {
			n++
		}
	}
	return n
}

func (s *fakeScheduler) fireRepeat(i int, now time.Time) {
	s.mu.Lock()
	r := s.repeat[i]
	s.mu.Unlock()
	if !r.cancelled {
		r.fn(now)
	}
}

func (s *fakeScheduler) afters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.after)
}

func (s *fakeScheduler) activeAfters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.after {
		if !a.cancelled {
			n++
		}
	}
	return n
}

// fireAfter elapses countdown i. Cancelled countdowns never fire, matching
// the real scheduler.
func (s *fakeScheduler) fireAfter(i int) {
	s.mu.Lock()
	a := s.after[i]
	s.mu.Unlock()
	if !a.cancelled {
		a.fn()
	}
}

// lastAfter returns the index of the most recently armed countdown.
func (s *fakeScheduler) lastAfter() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.after) - 1
}
