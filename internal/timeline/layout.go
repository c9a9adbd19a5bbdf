package timeline

import (
	"slices"
	"time"

	"github.com/javiermolinar/hearth/internal/event"
)

// DefaultVisibleCap is how many events a window renders before the rest
// collapse into the overflow bucket.
const DefaultVisibleCap = 6

// PositionedEvent is an event with its horizontal placement in [0,1].
type PositionedEvent struct {
	Event    event.Event
	Position float64
}

// OverflowBucket aggregates the events past the visible cap.
type OverflowBucket struct {
	Count    int
	Hidden   []event.Event // chronological
	Position float64       // always 1, the end of the axis
}

// Layout is the render-ready arrangement of a window's events.
type Layout struct {
	Visible  []PositionedEvent
	Overflow *OverflowBucket // nil unless the cap was exceeded
}

// Total returns the number of window events represented by the layout.
func (l Layout) Total() int {
	n := len(l.Visible)
	if l.Overflow != nil {
		n += l.Overflow.Count
	}
	return n
}

// FilterSort returns the events whose start lies within w, ordered by
// start. Events with identical starts keep their input order.
func FilterSort(events []event.Event, w WeekWindow) []event.Event {
	out := make([]event.Event, 0, len(events))
	for _, ev := range events {
		if w.Contains(ev.Start) {
			out = append(out, ev)
		}
	}
	slices.SortStableFunc(out, func(a, b event.Event) int {
		return a.Start.Compare(b.Start)
	})
	return out
}

// Position maps t onto the window axis: 0 at Start, 1 at End, clamped.
func Position(t time.Time, w WeekWindow) float64 {
	span := w.Span()
	if span <= 0 {
		return 0
	}
	p := float64(t.Sub(w.Start)) / float64(span)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Aggregate positions the first visibleCap sorted events and folds any
// remainder into a single overflow bucket. A cap below 1 falls back to
// DefaultVisibleCap.
func Aggregate(sorted []event.Event, w WeekWindow, visibleCap int) Layout {
	if visibleCap < 1 {
		visibleCap = DefaultVisibleCap
	}

	shown := sorted
	var hidden []event.Event
	if len(sorted) > visibleCap {
		shown = sorted[:visibleCap]
		hidden = slices.Clone(sorted[visibleCap:])
	}

	layout := Layout{Visible: make([]PositionedEvent, 0, len(shown))}
	for _, ev := range shown {
		layout.Visible = append(layout.Visible, PositionedEvent{
			Event:    ev,
			Position: Position(ev.Start, w),
		})
	}
	if len(hidden) > 0 {
		layout.Overflow = &OverflowBucket{
			Count:    len(hidden),
			Hidden:   hidden,
			Position: 1,
		}
	}
	return layout
}

// NextEvent returns the first sorted event starting at or after now.
func NextEvent(sorted []event.Event, now time.Time) (event.Event, bool) {
	for _, ev := range sorted {
		if !ev.Start.Before(now) {
			return ev, true
		}
	}
	return event.Event{}, false
}

func findEvent(events []event.Event, id string) (event.Event, bool) {
	for _, ev := range events {
		if ev.ID == id {
			return ev, true
		}
	}
	return event.Event{}, false
}
