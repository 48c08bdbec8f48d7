package track

import "time"

// Transition describes the state change the store must persist after a legal
// session action. The state machine itself is side-effect-free: it decides
// legality and the shape of the result, the store applies it.
type Transition struct {
	NewStatus Status
	// OpenSegment requests a new segment starting At.
	OpenSegment bool
	// CloseSegmentID names the segment to close at At, if any.
	CloseSegmentID string
	// FoldDuration requests the closed segment's duration be added to the
	// session's accumulated seconds.
	FoldDuration bool
	At           time.Time
}

// Start validates and shapes the INACTIVE -> ACTIVE transition.
func Start(s *Session, now time.Time) (Transition, error) {
	if s != nil && (s.Status != StatusInactive || s.HasOpenSegment()) {
		return Transition{}, &InvalidTransitionError{Op: "start", Reason: "session already open"}
	}
	return Transition{NewStatus: StatusActive, OpenSegment: true, At: now}, nil
}

// Pause validates and shapes the ACTIVE -> PAUSED transition. segmentID must
// name the currently open segment.
func Pause(s *Session, segmentID string, now time.Time) (Transition, error) {
	if s == nil || s.Status != StatusActive {
		return Transition{}, &InvalidTransitionError{Op: "pause", Reason: "wrong status"}
	}
	if !s.HasOpenSegment() {
		return Transition{}, &InvalidTransitionError{Op: "pause", Reason: "no active segment"}
	}
	if segmentID != s.OpenSegmentID {
		return Transition{}, &InvalidTransitionError{Op: "pause", Reason: "segment id mismatch"}
	}
	return Transition{
		NewStatus:      StatusPaused,
		CloseSegmentID: s.OpenSegmentID,
		FoldDuration:   true,
		At:             now,
	}, nil
}

// Resume validates and shapes the PAUSED -> ACTIVE transition. targetID must
// match the session's resume target (falling back to the open segment id).
func Resume(s *Session, targetID string, now time.Time) (Transition, error) {
	if s == nil || s.Status != StatusPaused {
		return Transition{}, &InvalidTransitionError{Op: "resume", Reason: "wrong status"}
	}
	target := s.ResumeTarget()
	if target == "" {
		return Transition{}, &InvalidTransitionError{Op: "resume", Reason: "no paused segment"}
	}
	if targetID != target {
		return Transition{}, &InvalidTransitionError{Op: "resume", Reason: "resume target mismatch"}
	}
	return Transition{NewStatus: StatusActive, OpenSegment: true, At: now}, nil
}

// End validates and shapes the ACTIVE -> INACTIVE transition. Ending while
// PAUSED is disallowed; callers must resume first.
func End(s *Session, segmentID string, now time.Time) (Transition, error) {
	if s != nil && s.Status == StatusPaused {
		return Transition{}, &InvalidTransitionError{Op: "end", Reason: "session is paused, resume it first"}
	}
	if s == nil || s.Status != StatusActive {
		return Transition{}, &InvalidTransitionError{Op: "end", Reason: "no active segment"}
	}
	if segmentID != s.OpenSegmentID {
		return Transition{}, &InvalidTransitionError{Op: "end", Reason: "segment id mismatch"}
	}
	return Transition{
		NewStatus:      StatusInactive,
		CloseSegmentID: s.OpenSegmentID,
		FoldDuration:   true,
		At:             now,
	}, nil
}
