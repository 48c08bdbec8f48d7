package track_test

import (
	"testing"
	"time"

	"github.com/rbeaumont/shiftclock/internal/track"
)

func activeSession(segID string, startedAt time.Time) *track.Session {
	return &track.Session{
		SubjectID:        "alice",
		Status:           track.StatusActive,
		OpenSegmentID:    segID,
		SegmentStartedAt: &startedAt,
	}
}

func pausedSession(segID, resumeTarget string) *track.Session {
	return &track.Session{
		SubjectID:      "alice",
		Status:         track.StatusPaused,
		OpenSegmentID:  segID,
		ResumeTargetID: resumeTarget,
	}
}

func TestStartFromInactive(t *testing.T) {
	now := time.Now()
	s := &track.Session{SubjectID: "alice", Status: track.StatusInactive}

	tr, err := track.Start(s, now)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if tr.NewStatus != track.StatusActive {
		t.Errorf("NewStatus = %s, want ACTIVE", tr.NewStatus)
	}
	if !tr.OpenSegment {
		t.Error("expected a new segment to be opened")
	}
	if !tr.At.Equal(now) {
		t.Errorf("At = %v, want %v", tr.At, now)
	}
}

func TestStartRejectedWhileOpen(t *testing.T) {
	now := time.Now()
	for _, s := range []*track.Session{
		activeSession("seg-1", now.Add(-time.Minute)),
		pausedSession("seg-1", "seg-1"),
	} {
		if _, err := track.Start(s, now); !track.IsInvalidTransition(err) {
			t.Errorf("Start with status %s: err = %v, want InvalidTransition", s.Status, err)
		}
	}
}

func TestPauseClosesAndFolds(t *testing.T) {
	now := time.Now()
	s := activeSession("seg-7", now.Add(-90*time.Second))

	tr, err := track.Pause(s, "seg-7", now)
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if tr.NewStatus != track.StatusPaused {
		t.Errorf("NewStatus = %s, want PAUSED", tr.NewStatus)
	}
	if tr.CloseSegmentID != "seg-7" {
		t.Errorf("CloseSegmentID = %q, want seg-7", tr.CloseSegmentID)
	}
	if !tr.FoldDuration {
		t.Error("expected the closed segment's duration to fold into the accumulated total")
	}
}

// Pausing segment 5 when the open segment is 7 must be rejected.
func TestPauseSegmentIDMismatch(t *testing.T) {
	now := time.Now()
	s := activeSession("seg-7", now.Add(-time.Minute))

	_, err := track.Pause(s, "seg-5", now)
	if !track.IsInvalidTransition(err) {
		t.Fatalf("err = %v, want InvalidTransition", err)
	}
}

func TestPauseWrongStatus(t *testing.T) {
	now := time.Now()
	for _, s := range []*track.Session{
		{SubjectID: "alice", Status: track.StatusInactive},
		pausedSession("seg-1", "seg-1"),
		nil,
	} {
		if _, err := track.Pause(s, "seg-1", now); !track.IsInvalidTransition(err) {
			t.Errorf("Pause on %+v: err = %v, want InvalidTransition", s, err)
		}
	}
}

func TestResumeMatchesTarget(t *testing.T) {
	now := time.Now()
	s := pausedSession("seg-2", "seg-3")

	tr, err := track.Resume(s, "seg-3", now)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if tr.NewStatus != track.StatusActive || !tr.OpenSegment {
		t.Errorf("transition = %+v, want ACTIVE with a fresh segment", tr)
	}
}

// With no explicit resume target the open segment id is the fallback.
func TestResumeFallsBackToOpenSegment(t *testing.T) {
	now := time.Now()
	s := pausedSession("seg-2", "")

	if _, err := track.Resume(s, "seg-2", now); err != nil {
		t.Fatalf("Resume via fallback: %v", err)
	}
}

func TestResumeTargetMismatch(t *testing.T) {
	now := time.Now()
	s := pausedSession("seg-2", "seg-3")

	if _, err := track.Resume(s, "seg-9", now); !track.IsInvalidTransition(err) {
		t.Fatal("expected InvalidTransition for mismatched resume target")
	}
}

func TestResumeWrongStatus(t *testing.T) {
	now := time.Now()
	for _, s := range []*track.Session{
		{SubjectID: "alice", Status: track.StatusInactive},
		activeSession("seg-1", now.Add(-time.Minute)),
	} {
		if _, err := track.Resume(s, "seg-1", now); !track.IsInvalidTransition(err) {
			t.Errorf("Resume with status %s: err = %v, want InvalidTransition", s.Status, err)
		}
	}
}

func TestEndFromActive(t *testing.T) {
	now := time.Now()
	s := activeSession("seg-4", now.Add(-time.Hour))

	tr, err := track.End(s, "seg-4", now)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if tr.NewStatus != track.StatusInactive {
		t.Errorf("NewStatus = %s, want INACTIVE", tr.NewStatus)
	}
	if tr.CloseSegmentID != "seg-4" || !tr.FoldDuration {
		t.Errorf("transition = %+v, want seg-4 closed and folded", tr)
	}
}

// Ending while paused is always rejected; callers must resume first.
func TestEndFromPausedRejected(t *testing.T) {
	now := time.Now()
	s := pausedSession("seg-4", "seg-4")

	_, err := track.End(s, "seg-4", now)
	if !track.IsInvalidTransition(err) {
		t.Fatalf("err = %v, want InvalidTransition", err)
	}
}

func TestEndSegmentIDMismatch(t *testing.T) {
	now := time.Now()
	s := activeSession("seg-4", now.Add(-time.Hour))

	if _, err := track.End(s, "seg-5", now); !track.IsInvalidTransition(err) {
		t.Fatal("expected InvalidTransition for mismatched end segment id")
	}
}

func TestInvalidTransitionCarriesReason(t *testing.T) {
	_, err := track.Pause(nil, "x", time.Now())
	ite, ok := err.(*track.InvalidTransitionError)
	if !ok {
		t.Fatalf("err = %T, want *InvalidTransitionError", err)
	}
	if ite.Reason == "" {
		t.Error("expected a non-empty machine-readable reason")
	}
	if ite.Op != "pause" {
		t.Errorf("Op = %q, want pause", ite.Op)
	}
}
