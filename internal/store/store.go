// Package store persists session and segment records, one JSON document per
// subject under the XDG data directory. It is the final arbiter for state
// transitions: every Apply call revalidates against the state machine, so a
// request racing an already-applied transition is rejected, not merged.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/rbeaumont/shiftclock/internal/track"
)

// ErrNoSession is returned by Load when no record exists for a subject.
var ErrNoSession = errors.New("no session on record")

// Store is the session store consumed by the engine, the CLI, and the TUI.
type Store interface {
	Snapshot(ctx context.Context, subjectID string) (*track.Session, error)
	Segments(ctx context.Context, subjectID string) ([]track.Segment, error)
	ApplyStart(ctx context.Context, subjectID string) (*track.Session, error)
	ApplyPause(ctx context.Context, subjectID, segmentID string) (*track.Session, error)
	ApplyResume(ctx context.Context, subjectID, targetID string) (*track.Session, error)
	ApplyEnd(ctx context.Context, subjectID, segmentID string) (*track.Session, error)
	AppendNote(ctx context.Context, subjectID, message string) error
	Notes(ctx context.Context, subjectID string) ([]Note, error)
}

// Note is a work note attached to a subject's record.
type Note struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// record is the on-disk document: the current session, its full segment
// history, and the subject's work notes.
type record struct {
	Session  track.Session   `json:"session"`
	Segments []track.Segment `json:"segments"`
	Notes    []Note          `json:"notes,omitempty"`
}

// diskStore writes one record file per subject.
type diskStore struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// New returns a Store rooted at dir. An empty dir resolves to
// $XDG_DATA_HOME/shiftclock or ~/.local/share/shiftclock.
func New(dir string, logger *slog.Logger) (Store, error) {
	if dir == "" {
		base, err := DataDir()
		if err != nil {
			return nil, fmt.Errorf("resolving data directory: %w", err)
		}
		dir = base
	}
	if err := os.MkdirAll(filepath.Join(dir, "subjects"), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &diskStore{dir: dir, now: time.Now, logger: logger}, nil
}

// DataDir returns the shiftclock-specific XDG data directory.
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "shiftclock"), nil
}

func (d *diskStore) path(subjectID string) string {
	return filepath.Join(d.dir, "subjects", subjectID+".json")
}

// Snapshot returns the subject's authoritative state. A subject with no
// record is INACTIVE, not an error.
func (d *diskStore) Snapshot(_ context.Context, subjectID string) (*track.Session, error) {
	rec, err := d.load(subjectID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return &track.Session{SubjectID: subjectID, Status: track.StatusInactive}, nil
		}
		return nil, err
	}
	s := rec.Session
	return &s, nil
}

// Segments returns the subject's full segment history, oldest first.
func (d *diskStore) Segments(_ context.Context, subjectID string) ([]track.Segment, error) {
	rec, err := d.load(subjectID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, nil
		}
		return nil, err
	}
	return rec.Segments, nil
}

func (d *diskStore) ApplyStart(_ context.Context, subjectID string) (*track.Session, error) {
	return d.apply(subjectID, func(s *track.Session, now time.Time) (track.Transition, error) {
		return track.Start(s, now)
	})
}

func (d *diskStore) ApplyPause(_ context.Context, subjectID, segmentID string) (*track.Session, error) {
	return d.apply(subjectID, func(s *track.Session, now time.Time) (track.Transition, error) {
		return track.Pause(s, segmentID, now)
	})
}

func (d *diskStore) ApplyResume(_ context.Context, subjectID, targetID string) (*track.Session, error) {
	return d.apply(subjectID, func(s *track.Session, now time.Time) (track.Transition, error) {
		return track.Resume(s, targetID, now)
	})
}

func (d *diskStore) ApplyEnd(_ context.Context, subjectID, segmentID string) (*track.Session, error) {
	return d.apply(subjectID, func(s *track.Session, now time.Time) (track.Transition, error) {
		return track.End(s, segmentID, now)
	})
}

// AppendNote attaches a timestamped work note to the subject's record.
func (d *diskStore) AppendNote(_ context.Context, subjectID, message string) error {
	rec, err := d.load(subjectID)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			return err
		}
		rec = &record{Session: track.Session{SubjectID: subjectID, Status: track.StatusInactive}}
	}
	rec.Notes = append(rec.Notes, Note{At: d.now(), Message: message})
	return d.save(subjectID, rec)
}

// Notes returns the subject's work notes, oldest first.
func (d *diskStore) Notes(_ context.Context, subjectID string) ([]Note, error) {
	rec, err := d.load(subjectID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, nil
		}
		return nil, err
	}
	return rec.Notes, nil
}

// apply loads the record, validates the transition against the current
// state, persists the result, and returns the new session snapshot.
func (d *diskStore) apply(subjectID string, decide func(*track.Session, time.Time) (track.Transition, error)) (*track.Session, error) {
	rec, err := d.load(subjectID)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			return nil, err
		}
		rec = &record{Session: track.Session{SubjectID: subjectID, Status: track.StatusInactive}}
	}

	now := d.now()
	tr, err := decide(&rec.Session, now)
	if err != nil {
		return nil, err
	}

	if tr.CloseSegmentID != "" {
		if err := rec.closeSegment(tr); err != nil {
			return nil, err
		}
	}

	rec.Session.Status = tr.NewStatus
	switch tr.NewStatus {
	case track.StatusPaused:
		// The just-closed segment stays addressable as the resume target.
		rec.Session.ResumeTargetID = tr.CloseSegmentID
		rec.Session.SegmentStartedAt = nil
	case track.StatusInactive:
		rec.Session.OpenSegmentID = ""
		rec.Session.ResumeTargetID = ""
		rec.Session.SegmentStartedAt = nil
	}

	if tr.OpenSegment {
		seg := track.Segment{
			ID:        uuid.New().String(),
			SubjectID: subjectID,
			Start:     tr.At,
			Origin:    track.StatusActive,
		}
		rec.Segments = append(rec.Segments, seg)
		rec.Session.OpenSegmentID = seg.ID
		rec.Session.ResumeTargetID = ""
		started := tr.At
		rec.Session.SegmentStartedAt = &started
	}

	if err := d.save(subjectID, rec); err != nil {
		return nil, err
	}
	d.logger.Debug("session transition applied",
		"subject", subjectID, "status", rec.Session.Status, "open_segment", rec.Session.OpenSegmentID)
	s := rec.Session
	return &s, nil
}

// closeSegment stamps the named open segment with the transition time and
// folds its duration into the session's accumulated seconds.
func (r *record) closeSegment(tr track.Transition) error {
	for i := range r.Segments {
		seg := &r.Segments[i]
		if seg.ID != tr.CloseSegmentID || seg.End != nil {
			continue
		}
		end := tr.At
		if end.Before(seg.Start) {
			end = seg.Start
		}
		seg.End = &end
		seg.DurationSeconds = int64(end.Sub(seg.Start) / time.Second)
		if tr.FoldDuration {
			r.Session.AccumulatedSeconds += seg.DurationSeconds
		}
		return nil
	}
	return &track.InvalidTransitionError{Op: "close", Reason: "open segment not found"}
}

// load reads and unmarshals the subject's record file.
func (d *diskStore) load(subjectID string) (*record, error) {
	data, err := os.ReadFile(d.path(subjectID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, &track.TransportError{Op: "load", Err: err}
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &track.TransportError{Op: "load", Err: err}
	}
	return &rec, nil
}

// save marshals the record and writes it atomically via temp file + rename.
func (d *diskStore) save(subjectID string, rec *record) (err error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return &track.TransportError{Op: "save", Err: err}
	}

	dir := filepath.Dir(d.path(subjectID))
	tmp, err := os.CreateTemp(dir, "subject-*.json.tmp")
	if err != nil {
		return &track.TransportError{Op: "save", Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return &track.TransportError{Op: "save", Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &track.TransportError{Op: "save", Err: err}
	}
	if err = os.Rename(tmpName, d.path(subjectID)); err != nil {
		return &track.TransportError{Op: "save", Err: err}
	}
	return nil
}
