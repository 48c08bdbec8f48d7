package track_test

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/rbeaumont/shiftclock/internal/track"
)

func ts(t *testing.T, day string, hour, min int) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", day, time.Local)
	if err != nil {
		t.Fatalf("parse %q: %v", day, err)
	}
	return d.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func closedSegment(id string, start, end time.Time) track.Segment {
	return track.Segment{
		ID:              id,
		SubjectID:       "alice",
		Start:           start,
		End:             &end,
		Origin:          track.StatusActive,
		DurationSeconds: int64(end.Sub(start) / time.Second),
	}
}

// One closed segment 09:00–12:00 plus an open segment since 11:00 with the
// session ACTIVE and now = 13:00: today's total is 3h + 2h = 18000s.
func TestAggregateTodayWithOpenSegment(t *testing.T) {
	day := "2026-03-04"
	now := ts(t, day, 13, 0)
	segments := []track.Segment{
		closedSegment("seg-1", ts(t, day, 9, 0), ts(t, day, 12, 0)),
		{ID: "seg-2", SubjectID: "alice", Start: ts(t, day, 11, 0), Origin: track.StatusActive},
	}
	live := &track.Session{
		SubjectID:     "alice",
		Status:        track.StatusActive,
		OpenSegmentID: "seg-2",
	}

	got := track.Aggregate(segments, live, track.Today(now), now)
	if got.Seconds != 18000 {
		t.Fatalf("Seconds = %d, want 18000", got.Seconds)
	}
	if got.Skipped != 0 {
		t.Fatalf("Skipped = %d, want 0", got.Skipped)
	}
	if got.Hours() != 5 {
		t.Fatalf("Hours = %v, want 5", got.Hours())
	}
}

func TestAggregateClamping(t *testing.T) {
	day := "2026-03-04"
	w := track.Window{From: ts(t, day, 10, 0), To: ts(t, day, 14, 0)}
	now := ts(t, day, 18, 0)

	tests := []struct {
		name string
		seg  track.Segment
		want int64
	}{
		{"fully inside", closedSegment("a", ts(t, day, 11, 0), ts(t, day, 12, 0)), 3600},
		{"fully before", closedSegment("b", ts(t, day, 8, 0), ts(t, day, 9, 0)), 0},
		{"fully after", closedSegment("c", ts(t, day, 15, 0), ts(t, day, 16, 0)), 0},
		{"straddles start", closedSegment("d", ts(t, day, 9, 30), ts(t, day, 10, 30)), 1800},
		{"straddles end", closedSegment("e", ts(t, day, 13, 30), ts(t, day, 14, 30)), 1800},
		{"spans whole window", closedSegment("f", ts(t, day, 9, 0), ts(t, day, 15, 0)), 4 * 3600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := track.Aggregate([]track.Segment{tt.seg}, nil, w, now)
			if got.Seconds != tt.want {
				t.Errorf("Seconds = %d, want %d", got.Seconds, tt.want)
			}
		})
	}
}

// An open segment whose session is not actually running contributes nothing,
// and a dangling open row that is not the current open segment is skipped.
func TestAggregateMalformedRows(t *testing.T) {
	day := "2026-03-04"
	now := ts(t, day, 13, 0)
	w := track.Today(now)

	end := ts(t, day, 9, 0)
	segments := []track.Segment{
		// end before start
		{ID: "bad-1", Start: ts(t, day, 10, 0), End: &end},
		// dangling open row, not the session's open segment
		{ID: "bad-2", Start: ts(t, day, 8, 0)},
		// the session's open segment, but PAUSED: zero contribution, not skipped
		{ID: "seg-open", Start: ts(t, day, 11, 0)},
		closedSegment("good", ts(t, day, 9, 0), ts(t, day, 10, 0)),
	}
	live := &track.Session{Status: track.StatusPaused, OpenSegmentID: "seg-open"}

	got := track.Aggregate(segments, live, w, now)
	if got.Seconds != 3600 {
		t.Errorf("Seconds = %d, want 3600 (only the closed good row)", got.Seconds)
	}
	if got.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", got.Skipped)
	}
}

func TestWeekWindowStartsMonday(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	now := ts(t, "2026-03-04", 15, 30)
	w := track.ThisWeek(now)

	if w.From.Weekday() != time.Monday {
		t.Fatalf("week starts on %s, want Monday", w.From.Weekday())
	}
	if h, m, s := w.From.Clock(); h != 0 || m != 0 || s != 0 {
		t.Fatalf("week start clock = %02d:%02d:%02d, want midnight", h, m, s)
	}
	if !w.From.Equal(ts(t, "2026-03-02", 0, 0)) {
		t.Fatalf("week start = %v, want 2026-03-02 00:00", w.From)
	}
	if !w.Contains(now) {
		t.Fatal("window must contain now")
	}

	// A Monday is its own week start.
	monday := ts(t, "2026-03-02", 0, 0)
	if got := track.ThisWeek(monday); !got.From.Equal(monday) {
		t.Fatalf("week start for a Monday = %v, want %v", got.From, monday)
	}
	// Sunday still belongs to the preceding Monday's week.
	sunday := ts(t, "2026-03-08", 23, 0)
	if got := track.ThisWeek(sunday); !got.From.Equal(ts(t, "2026-03-02", 0, 0)) {
		t.Fatalf("week start for a Sunday = %v, want 2026-03-02", got.From)
	}
}

// Contribution is always within [0, min(window length, segment length)], and
// splitting a window in two never changes the total.
func TestAggregateProperties(t *testing.T) {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(rt, "segments")
		segments := make([]track.Segment, 0, n)
		for i := 0; i < n; i++ {
			startSec := rapid.Int64Range(0, 14*24*3600).Draw(rt, "start")
			lenSec := rapid.Int64Range(0, 12*3600).Draw(rt, "len")
			start := base.Add(time.Duration(startSec) * time.Second)
			end := start.Add(time.Duration(lenSec) * time.Second)
			segments = append(segments, closedSegment("seg", start, end))
		}

		fromSec := rapid.Int64Range(0, 14*24*3600).Draw(rt, "from")
		spanSec := rapid.Int64Range(0, 7*24*3600).Draw(rt, "span")
		from := base.Add(time.Duration(fromSec) * time.Second)
		to := from.Add(time.Duration(spanSec) * time.Second)
		now := base.Add(15 * 24 * time.Hour)

		w := track.Window{From: from, To: to}
		total := track.Aggregate(segments, nil, w, now)

		if total.Seconds < 0 {
			rt.Fatalf("negative total %d", total.Seconds)
		}
		var fullSum int64
		for _, seg := range segments {
			fullSum += seg.DurationSeconds
		}
		if total.Seconds > fullSum {
			rt.Fatalf("total %d exceeds sum of segment durations %d", total.Seconds, fullSum)
		}

		// Additivity across a window split at an arbitrary point.
		cutSec := rapid.Int64Range(0, spanSec).Draw(rt, "cut")
		cut := from.Add(time.Duration(cutSec) * time.Second)
		left := track.Aggregate(segments, nil, track.Window{From: from, To: cut}, now)
		right := track.Aggregate(segments, nil, track.Window{From: cut, To: to}, now)
		if left.Seconds+right.Seconds != total.Seconds {
			rt.Fatalf("split totals %d + %d != %d", left.Seconds, right.Seconds, total.Seconds)
		}
	})
}
