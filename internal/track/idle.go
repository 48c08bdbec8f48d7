package track

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultIdleThreshold is used when no threshold is configured.
const DefaultIdleThreshold = 5 * time.Minute

// IdleMonitor pauses a running session automatically after a period of
// inactivity. It arms only while the session is ACTIVE with an open segment,
// rearms on every activity signal, fires the injected pause action exactly
// once, and then stays quiet until the session is ACTIVE again.
type IdleMonitor struct {
	mu sync.Mutex

	enabled   bool
	threshold time.Duration
	sched     Scheduler
	pause     func() error
	onError   func(error)
	logger    *slog.Logger

	armed    bool
	fired    bool
	deadline time.Time
	cancel   CancelFunc
}

// NewIdleMonitor builds a monitor that invokes pause when the threshold
// elapses without activity. onError may be nil; pause failures are then only
// logged. A non-positive threshold falls back to DefaultIdleThreshold.
func NewIdleMonitor(sched Scheduler, threshold time.Duration, pause func() error, onError func(error), logger *slog.Logger) *IdleMonitor {
	if threshold <= 0 {
		threshold = DefaultIdleThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IdleMonitor{
		enabled:   true,
		threshold: threshold,
		sched:     sched,
		pause:     pause,
		onError:   onError,
		logger:    logger,
	}
}

// SetEnabled turns the monitor on or off. Disabling disarms any pending
// countdown immediately.
func (m *IdleMonitor) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
	if !enabled {
		m.disarmLocked()
	}
}

// OnState must be called on every observed session state change. It arms the
// countdown when the session becomes ACTIVE with an open segment and disarms
// it on any other state.
func (m *IdleMonitor) OnState(status Status, hasOpenSegment bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || status != StatusActive || !hasOpenSegment {
		m.disarmLocked()
		m.fired = false
		return
	}
	m.fired = false
	m.rearmLocked()
}

// Activity rearms the countdown from zero. No-op when the monitor is not
// armed (inactive session, disabled, or already fired).
func (m *IdleMonitor) Activity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.armed || m.fired {
		return
	}
	m.rearmLocked()
}

// Deadline reports when the countdown will fire. ok is false when the
// monitor is not armed.
func (m *IdleMonitor) Deadline() (at time.Time, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deadline, m.armed && !m.fired
}

// Stop disarms the monitor and releases its timer.
func (m *IdleMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disarmLocked()
}

func (m *IdleMonitor) rearmLocked() {
	if m.cancel != nil {
		m.cancel()
	}
	m.armed = true
	m.deadline = time.Now().Add(m.threshold)
	m.cancel = m.sched.After(m.threshold, m.fire)
}

func (m *IdleMonitor) disarmLocked() {
	m.armed = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// fire runs on the scheduler goroutine when the countdown elapses.
func (m *IdleMonitor) fire() {
	m.mu.Lock()
	if !m.armed || m.fired {
		m.mu.Unlock()
		return
	}
	m.fired = true
	m.disarmLocked()
	pause := m.pause
	m.mu.Unlock()

	if pause == nil {
		return
	}
	if err := pause(); err != nil {
		// No retry loop here: the next activity or state transition
		// re-evaluates. The failure is reported once and logged.
		m.logger.Warn("idle auto-pause failed", "error", err)
		if m.onError != nil {
			m.onError(err)
		}
	} else {
		m.logger.Info("session auto-paused after idle threshold")
	}
}
