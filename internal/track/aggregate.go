package track

import "time"

// Window is a closed aggregation interval [From, To].
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// Today returns the local midnight-to-midnight window around now.
func Today(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Window{From: start, To: start.AddDate(0, 0, 1)}
}

// ThisWeek returns the Monday-00:00-start week window around now.
func ThisWeek(now time.Time) Window {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	monday := day.AddDate(0, 0, -offset)
	return Window{From: monday, To: monday.AddDate(0, 0, 7)}
}

// AllTime returns the [epoch, now] window.
func AllTime(now time.Time) Window {
	return Window{From: time.Unix(0, 0), To: now}
}

// Totals is the result of aggregating a segment history over a window.
type Totals struct {
	// Seconds is the summed contribution inside the window. Accumulation
	// stays in whole seconds; convert to hours only for presentation.
	Seconds int64
	// Skipped counts malformed rows that were ignored, for diagnostics.
	Skipped int
}

// Hours converts the total to fractional hours for display.
func (t Totals) Hours() float64 { return float64(t.Seconds) / 3600 }

// Aggregate computes the total elapsed seconds inside w for the given
// segment history. live identifies the subject's open segment and whether it
// is actually running; pass nil when the session is INACTIVE. The same
// clamping is used for every window; only the bounds differ.
//
// Malformed rows (end before start, or a dangling open row that is not the
// subject's current open segment) are skipped and counted, never fatal.
func Aggregate(segments []Segment, live *Session, w Window, now time.Time) Totals {
	var out Totals
	for _, seg := range segments {
		var effectiveEnd time.Time
		switch {
		case seg.End != nil:
			if seg.End.Before(seg.Start) {
				out.Skipped++
				continue
			}
			effectiveEnd = *seg.End
		case live != nil && seg.ID == live.OpenSegmentID:
			if live.Status == StatusActive {
				effectiveEnd = now
			} else {
				// Open but not running: contributes nothing.
				effectiveEnd = seg.Start
			}
		default:
			// Open row that is not the current open segment.
			out.Skipped++
			continue
		}

		clampedStart := seg.Start
		if clampedStart.Before(w.From) {
			clampedStart = w.From
		}
		clampedEnd := effectiveEnd
		if clampedEnd.After(w.To) {
			clampedEnd = w.To
		}
		// Segments fully outside the window clamp to a non-positive span.
		if contribution := int64(clampedEnd.Sub(clampedStart) / time.Second); contribution > 0 {
			out.Seconds += contribution
		}
	}
	return out
}
