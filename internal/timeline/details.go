package timeline

import (
	"strings"
	"time"

	"github.com/javiermolinar/hearth/internal/event"
)

// Detail text fragments.
const (
	NoEventsText   = "No events this week"
	NextPrefix     = "Next: "
	OverflowPrefix = "Also this week: "
	detailSep      = " · "
)

// Details derives the detail line for a selection over the window's sorted
// events.
//
// With nothing (or an unknown event) selected it describes the next event,
// prefixed with NextPrefix. When every window event is already in the past
// it falls back to the first one without the prefix.
func Details(sel Selection, sorted []event.Event, layout Layout, now time.Time) string {
	if len(sorted) == 0 {
		return NoEventsText
	}

	switch sel.Kind() {
	case SelectOverflow:
		if layout.Overflow != nil {
			return OverflowText(layout.Overflow)
		}
	case SelectEvent:
		if ev, ok := findEvent(sorted, sel.EventID()); ok {
			return EventText(ev, now)
		}
	}

	if next, ok := NextEvent(sorted, now); ok {
		return NextPrefix + EventText(next, now)
	}
	return EventText(sorted[0], now)
}

// EventText renders "<title> · <weekday date> · <relative day>".
func EventText(ev event.Event, now time.Time) string {
	return ev.Title + detailSep + WeekdayDateLabel(ev.Start.In(now.Location())) + detailSep + RelativeDayLabel(ev.Start, now)
}

// OverflowText lists the hidden events' titles.
func OverflowText(b *OverflowBucket) string {
	titles := make([]string, 0, len(b.Hidden))
	for _, ev := range b.Hidden {
		titles = append(titles, ev.Title)
	}
	return OverflowPrefix + strings.Join(titles, detailSep)
}
