package timeline

import (
	"time"

	"github.com/javiermolinar/hearth/internal/event"
)

// View is everything a renderer needs to draw one window.
type View struct {
	Offset      int
	Window      WeekWindow
	WindowLabel string
	Events      []event.Event // every window event, sorted
	Layout      Layout
	NextEventID string // "" when no event starts at or after now
	Selection   Selection
	Details     string
}

// Positioned returns the directly rendered events.
func (v View) Positioned() []PositionedEvent {
	return v.Layout.Visible
}

// Overflow returns the overflow bucket, or nil.
func (v View) Overflow() *OverflowBucket {
	return v.Layout.Overflow
}

// IsEmpty reports whether the window holds no events.
func (v View) IsEmpty() bool {
	return len(v.Events) == 0
}

// Build lays out events for the state's window at the given instant.
// Nothing is cached: the next-event pointer and details are derived from
// now on every call.
func (s State) Build(events []event.Event, now time.Time, visibleCap int) View {
	window := WindowFor(s.Offset, now)
	sorted := FilterSort(events, window)
	layout := Aggregate(sorted, window, visibleCap)

	v := View{
		Offset:      s.Offset,
		Window:      window,
		WindowLabel: WeekRangeLabel(window, s.Offset),
		Events:      sorted,
		Layout:      layout,
		Selection:   s.Selection,
		Details:     Details(s.Selection, sorted, layout, now),
	}
	if next, ok := NextEvent(sorted, now); ok {
		v.NextEventID = next.ID
	}
	return v
}
