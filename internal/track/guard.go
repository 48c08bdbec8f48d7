package track

import (
	"context"
	"fmt"
)

// GuardStore is the slice of the session store the guard needs.
type GuardStore interface {
	Snapshot(ctx context.Context, subjectID string) (*Session, error)
	ApplyStart(ctx context.Context, subjectID string) (*Session, error)
	ApplyResume(ctx context.Context, subjectID, targetID string) (*Session, error)
}

// Confirmer asks the user a yes/no question. Rendering is the caller's
// concern.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Policy answers whether a subject is exempt from time tracking.
type Policy interface {
	IsExempt(subjectID string) bool
}

// Guard ensures a protected action only runs against an ACTIVE session,
// prompting for the minimum necessary transition. It never silently proceeds
// without a confirmed active session.
type Guard struct {
	Store   GuardStore
	Confirm Confirmer
	Policy  Policy
	// Activity, when set, is signalled whenever the guard observes the
	// subject actively working. Feeds the idle monitor's rearm.
	Activity func()
}

// EnsureActive returns the authoritative session once it is ACTIVE, or an
// error when the protected action must not proceed. cached may be a stale
// snapshot or nil; a cached INACTIVE is verified against the store before
// being believed, because a stale cache most often misreports PAUSED as
// INACTIVE.
func (g *Guard) EnsureActive(ctx context.Context, subjectID string, cached *Session) (*Session, error) {
	if g.Policy != nil && g.Policy.IsExempt(subjectID) {
		return cached, nil
	}

	state := cached
	if state == nil || state.Status == StatusInactive {
		fresh, err := g.Store.Snapshot(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		state = fresh
	}

	switch state.Status {
	case StatusActive:
		g.signalActivity()
		return state, nil

	case StatusPaused:
		ok, err := g.Confirm.Confirm("Your session is paused. Resume it and continue?")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAborted
		}
		target := state.ResumeTarget()
		if target == "" {
			// Both pointers unknown: one more authoritative refresh.
			fresh, err := g.Store.Snapshot(ctx, subjectID)
			if err != nil {
				return nil, err
			}
			target = fresh.ResumeTarget()
		}
		if target == "" {
			return nil, &InvalidTransitionError{Op: "resume", Reason: "no paused segment"}
		}
		resumed, err := g.Store.ApplyResume(ctx, subjectID, target)
		if err != nil {
			return nil, fmt.Errorf("resuming session: %w", err)
		}
		g.signalActivity()
		return resumed, nil

	case StatusInactive:
		ok, err := g.Confirm.Confirm("No active session. Start one and continue?")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAborted
		}
		started, err := g.Store.ApplyStart(ctx, subjectID)
		if err != nil {
			return nil, fmt.Errorf("starting session: %w", err)
		}
		g.signalActivity()
		return started, nil

	default:
		return nil, &InvalidTransitionError{Op: "guard", Reason: fmt.Sprintf("unknown status %q", state.Status)}
	}
}

func (g *Guard) signalActivity() {
	if g.Activity != nil {
		g.Activity()
	}
}
