package timeline

import "fmt"

// SelectionKind tags the variant held by a Selection.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectEvent
	SelectOverflow
)

// String implements fmt.Stringer.
func (k SelectionKind) String() string {
	switch k {
	case SelectEvent:
		return "event"
	case SelectOverflow:
		return "overflow"
	default:
		return "none"
	}
}

// Selection is the expanded detail target: nothing, one event, or the
// overflow bucket. The zero value is "nothing". Fields are unexported so a
// Selection can only be built through the constructors below, which keeps
// an event id from ever riding along with the overflow variant.
type Selection struct {
	kind    SelectionKind
	eventID string
}

// None returns the empty selection.
func None() Selection { return Selection{} }

// EventSelection selects the event with the given id.
func EventSelection(id string) Selection {
	return Selection{kind: SelectEvent, eventID: id}
}

// OverflowSelection selects the overflow bucket.
func OverflowSelection() Selection {
	return Selection{kind: SelectOverflow}
}

// Kind returns the variant tag.
func (s Selection) Kind() SelectionKind { return s.kind }

// EventID returns the selected event id, or "" unless Kind is SelectEvent.
func (s Selection) EventID() string { return s.eventID }

// IsNone reports whether nothing is selected.
func (s Selection) IsNone() bool { return s.kind == SelectNone }

// String implements fmt.Stringer.
func (s Selection) String() string {
	if s.kind == SelectEvent {
		return fmt.Sprintf("event(%s)", s.eventID)
	}
	return s.kind.String()
}

// ToggleEvent selects id, or clears the selection if id is already selected.
func (s Selection) ToggleEvent(id string) Selection {
	if s.kind == SelectEvent && s.eventID == id {
		return None()
	}
	return EventSelection(id)
}

// ToggleOverflow selects the overflow bucket, or clears it if already selected.
func (s Selection) ToggleOverflow() Selection {
	if s.kind == SelectOverflow {
		return None()
	}
	return OverflowSelection()
}

// State is the per-view timeline state: which week is shown and what is
// expanded. Transitions return a new State and never mutate the receiver.
type State struct {
	Offset    int
	Selection Selection
}

// Advance moves one week forward and clears the selection.
func (s State) Advance() State {
	return State{Offset: s.Offset + 1}
}

// Retreat moves one week back and clears the selection.
func (s State) Retreat() State {
	return State{Offset: s.Offset - 1}
}

// Jump shows the week at offset and clears the selection.
func (s State) Jump(offset int) State {
	return State{Offset: offset}
}

// SelectEvent toggles the detail view for the event id.
func (s State) SelectEvent(id string) State {
	s.Selection = s.Selection.ToggleEvent(id)
	return s
}

// SelectOverflow toggles the detail view for the overflow bucket.
func (s State) SelectOverflow() State {
	s.Selection = s.Selection.ToggleOverflow()
	return s
}
