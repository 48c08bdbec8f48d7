// Package track implements the work-session tracking engine: the session
// state machine, live-duration reconciliation, idle auto-pause, time-window
// aggregation, and the active-session guard. It holds no storage of its own;
// session and segment records are owned by the store and passed in as
// snapshots.
package track

import "time"

// Status is a subject's current work state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusPaused   Status = "PAUSED"
	StatusInactive Status = "INACTIVE"
)

// Session is a point-in-time snapshot of a subject's work state as reported
// by the store. Consumers must treat the whole struct as one atomic snapshot
// and never mix fields from two different fetches.
type Session struct {
	SubjectID string `json:"subject_id"`
	Status    Status `json:"status"`
	// OpenSegmentID is set iff Status is ACTIVE or PAUSED.
	OpenSegmentID string `json:"open_segment_id,omitempty"`
	// ResumeTargetID points at the segment to resume into while PAUSED.
	ResumeTargetID string `json:"resume_target_id,omitempty"`
	// AccumulatedSeconds is the store-confirmed elapsed time, excluding any
	// time since the open segment's start. It never includes a live delta.
	AccumulatedSeconds int64 `json:"accumulated_seconds"`
	// SegmentStartedAt is set only while ACTIVE.
	SegmentStartedAt *time.Time `json:"segment_started_at,omitempty"`
}

// HasOpenSegment reports whether the snapshot carries an open segment.
func (s *Session) HasOpenSegment() bool {
	return s != nil && s.OpenSegmentID != ""
}

// ResumeTarget returns the segment id a resume should address, falling back
// to the open segment id when no explicit target is recorded.
func (s *Session) ResumeTarget() string {
	if s == nil {
		return ""
	}
	if s.ResumeTargetID != "" {
		return s.ResumeTargetID
	}
	return s.OpenSegmentID
}

// Segment is one recorded interval of work. Once End is set the row is
// immutable; while End is nil the segment is still open and its duration is
// computed on demand against "now".
type Segment struct {
	ID        string     `json:"id"`
	SubjectID string     `json:"subject_id"`
	Start     time.Time  `json:"start"`
	End       *time.Time `json:"end,omitempty"`
	// Origin records the session status that produced the row.
	Origin          Status `json:"origin"`
	DurationSeconds int64  `json:"duration_seconds"`
}

// Closed reports whether the segment has an end timestamp.
func (g *Segment) Closed() bool { return g.End != nil }
