package timeline

import "math"

// CellKind is what occupies one column of a drawn axis.
type CellKind int

const (
	CellLine CellKind = iota
	CellTick
	CellEvent
	CellOverflow
	CellNext
	CellSelected
)

// Axis is a view laid out on a fixed number of columns.
type Axis struct {
	Cells []CellKind
	Ticks [DaysPerWindow]int // column of each day's midnight
}

// Column maps a position in [0,1] onto one of width columns.
func Column(p float64, width int) int {
	if width <= 1 {
		return 0
	}
	col := int(math.Round(p * float64(width-1)))
	return min(max(col, 0), width-1)
}

// Axis lays the view out on width columns. Day ticks are placed first,
// then event markers, the overflow bucket, the next event and the
// selection; a later kind wins when two share a column. Widths below
// DaysPerWindow are widened to it.
func (v View) Axis(width int) Axis {
	width = max(width, DaysPerWindow)
	ax := Axis{Cells: make([]CellKind, width)}

	for i := range DaysPerWindow {
		col := Column(Position(v.Window.Day(i), v.Window), width)
		ax.Ticks[i] = col
		ax.Cells[col] = CellTick
	}

	for _, pe := range v.Layout.Visible {
		ax.Cells[Column(pe.Position, width)] = CellEvent
	}
	if ov := v.Layout.Overflow; ov != nil {
		ax.Cells[Column(ov.Position, width)] = CellOverflow
	}
	ax.mark(v, v.NextEventID, width, CellNext)

	switch v.Selection.Kind() {
	case SelectEvent:
		ax.mark(v, v.Selection.EventID(), width, CellSelected)
	case SelectOverflow:
		if ov := v.Layout.Overflow; ov != nil {
			ax.Cells[Column(ov.Position, width)] = CellSelected
		}
	}
	return ax
}

func (ax Axis) mark(v View, id string, width int, kind CellKind) {
	if id == "" {
		return
	}
	for _, pe := range v.Layout.Visible {
		if pe.Event.ID == id {
			ax.Cells[Column(pe.Position, width)] = kind
		}
	}
}
