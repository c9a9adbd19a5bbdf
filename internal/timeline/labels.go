package timeline

import (
	"strconv"
	"time"

	"github.com/javiermolinar/hearth/internal/dateutil"
	"github.com/javiermolinar/hearth/internal/event"
)

// RelativeDayLabel describes t's calendar day relative to now's, using
// calendar-day boundaries in now's location.
func RelativeDayLabel(t, now time.Time) string {
	days := dateutil.DayDiff(t, now)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 1:
		return "In " + strconv.Itoa(days) + " days"
	default:
		return strconv.Itoa(-days) + " days ago"
	}
}

// WeekdayDateLabel renders t as long weekday, day and short month,
// e.g. "Monday 10 Jun".
func WeekdayDateLabel(t time.Time) string {
	return t.Format("Monday 2 Jan")
}

// ShortDateLabel renders t as short month and day, e.g. "Jun 10".
func ShortDateLabel(t time.Time) string {
	return t.Format("Jan 2")
}

// WeekRangeLabel names the window: "This week" at offset 0, otherwise
// "Week of Jun 10–Jun 16".
func WeekRangeLabel(w WeekWindow, offset int) string {
	if offset == 0 {
		return "This week"
	}
	return "Week of " + ShortDateLabel(w.Start) + "–" + ShortDateLabel(w.End)
}

// TimeRangeLabel renders an event's time of day in loc: "all day" when it
// spans whole days, "17:00" without an end, "17:00-18:00" within one day and
// "22:00-Sat 02:00" across midnight.
func TimeRangeLabel(ev event.Event, loc *time.Location) string {
	start := ev.Start.In(loc)
	if !ev.HasEnd() {
		return start.Format("15:04")
	}
	end := ev.End.In(loc)
	if start.Equal(dateutil.TruncateToDay(start)) && end.Equal(dateutil.TruncateToDay(end)) && end.After(start) {
		return "all day"
	}
	if dateutil.SameDay(start, end) {
		return start.Format("15:04") + "-" + end.Format("15:04")
	}
	return start.Format("15:04") + "-" + end.Format("Mon 15:04")
}
