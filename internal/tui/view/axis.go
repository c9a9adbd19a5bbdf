package view

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/hearth/internal/dateutil"
	"github.com/javiermolinar/hearth/internal/timeline"
)

// Axis glyphs.
const (
	GlyphLine     = "─"
	GlyphTick     = "┼"
	GlyphEvent    = "●"
	GlyphOverflow = "+"
	GlyphNext     = "◆"
	GlyphSelected = "◉"
)

// AxisStyles holds one style per axis cell kind.
type AxisStyles struct {
	Line     lipgloss.Style
	Tick     lipgloss.Style
	Event    lipgloss.Style
	Overflow lipgloss.Style
	Next     lipgloss.Style
	Selected lipgloss.Style
}

func (s AxisStyles) cell(kind timeline.CellKind) (lipgloss.Style, string) {
	switch kind {
	case timeline.CellTick:
		return s.Tick, GlyphTick
	case timeline.CellEvent:
		return s.Event, GlyphEvent
	case timeline.CellOverflow:
		return s.Overflow, GlyphOverflow
	case timeline.CellNext:
		return s.Next, GlyphNext
	case timeline.CellSelected:
		return s.Selected, GlyphSelected
	default:
		return s.Line, GlyphLine
	}
}

// RenderAxis draws the axis cells, styling runs of equal kind together.
func RenderAxis(axis timeline.Axis, styles AxisStyles) string {
	var b strings.Builder
	for i := 0; i < len(axis.Cells); {
		kind := axis.Cells[i]
		j := i + 1
		for j < len(axis.Cells) && axis.Cells[j] == kind {
			j++
		}
		style, glyph := styles.cell(kind)
		b.WriteString(style.Render(strings.Repeat(glyph, j-i)))
		i = j
	}
	return b.String()
}

// DayLabels places a short weekday label at each tick column. Today's
// label uses todayStyle. Labels that would overlap the next one are cut.
func DayLabels(w timeline.WeekWindow, ticks [timeline.DaysPerWindow]int, width int, today time.Time, style, todayStyle lipgloss.Style) string {
	var b strings.Builder
	col := 0
	for i, tick := range ticks {
		if tick < col {
			continue
		}
		if tick > col {
			b.WriteString(style.Render(strings.Repeat(" ", tick-col)))
			col = tick
		}

		day := w.Day(i)
		label := day.Format("Mon 2")
		room := width - col
		if i+1 < len(ticks) {
			room = min(room, ticks[i+1]-col-1)
		}
		if room <= 0 {
			continue
		}
		if len(label) > room {
			label = label[:room]
		}

		s := style
		if dateutil.SameDay(day, today) {
			s = todayStyle
		}
		b.WriteString(s.Render(label))
		col += len(label)
	}
	if col < width {
		b.WriteString(style.Render(strings.Repeat(" ", width-col)))
	}
	return b.String()
}
