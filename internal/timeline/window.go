// Package timeline turns a member's events into a positioned, labeled
// view of one 7-day window and tracks which entry is expanded for detail.
//
// Everything here is synchronous and pure: "now" is always a parameter and
// the only state carried between calls is the State value owned by a view.
package timeline

import (
	"time"

	"github.com/javiermolinar/hearth/internal/dateutil"
)

// DaysPerWindow is the width of a timeline window in calendar days.
const DaysPerWindow = 7

// WeekWindow is a 7-calendar-day span starting at local midnight.
type WeekWindow struct {
	Start time.Time // midnight of the first day
	End   time.Time // last millisecond of the seventh day
}

// WindowFor returns the window offset weeks away from the one starting
// today. Offset 0 starts at today's midnight; negative offsets are in the
// past. Calendar arithmetic keeps Start at midnight across DST changes.
func WindowFor(offset int, now time.Time) WeekWindow {
	start := dateutil.AddDays(dateutil.TruncateToDay(now), DaysPerWindow*offset)
	end := dateutil.AddDays(start, DaysPerWindow).Add(-time.Millisecond)
	return WeekWindow{Start: start, End: end}
}

// Contains reports whether t lies within the window, bounds included.
func (w WeekWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Span returns End - Start.
func (w WeekWindow) Span() time.Duration {
	return w.End.Sub(w.Start)
}

// Day returns midnight of the i-th day of the window (0-based).
func (w WeekWindow) Day(i int) time.Time {
	return dateutil.AddDays(w.Start, i)
}

// Equal reports whether both windows cover the same instants.
func (w WeekWindow) Equal(other WeekWindow) bool {
	return w.Start.Equal(other.Start) && w.End.Equal(other.End)
}
