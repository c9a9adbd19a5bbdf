package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"

	"github.com/javiermolinar/hearth/internal/event"
	"github.com/javiermolinar/hearth/internal/timeline"
)

// Axis glyphs.
const (
	glyphAxis     = '-'
	glyphTick     = '|'
	glyphEvent    = 'o'
	glyphOverflow = '+'
	glyphNext     = '*'
	glyphSelected = '@'

	minAxisWidth = 3 * timeline.DaysPerWindow
	axisIndent   = "  "
)

var axisGlyphs = map[timeline.CellKind]rune{
	timeline.CellLine:     glyphAxis,
	timeline.CellTick:     glyphTick,
	timeline.CellEvent:    glyphEvent,
	timeline.CellOverflow: glyphOverflow,
	timeline.CellNext:     glyphNext,
	timeline.CellSelected: glyphSelected,
}

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// writeWeek renders report in the requested format.
func writeWeek(w io.Writer, format string, report weekReport, width int) error {
	switch strings.ToLower(format) {
	case "", outputText:
		writeWeekText(w, report, width)
		return nil
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newWeekOutput(report))
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newWeekOutput(report)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func writeWeekText(w io.Writer, r weekReport, width int) {
	v := r.View

	header := fmt.Sprintf("%s · %s", r.Member, v.WindowLabel)
	if v.Offset == 0 {
		header += fmt.Sprintf(" (%s–%s)", timeline.ShortDateLabel(v.Window.Start), timeline.ShortDateLabel(v.Window.End))
	}
	fmt.Fprintf(w, "\n%s%s\n", axisIndent, formatHeader(header))

	axis, labels := renderAxis(v, width-2*len(axisIndent))
	fmt.Fprintf(w, "%s%s\n", axisIndent, axis)
	fmt.Fprintf(w, "%s%s\n\n", axisIndent, formatMuted(labels))

	if !v.IsEmpty() {
		fmt.Fprintln(w, eventTable(v, r.Now))
		if ov := v.Overflow(); ov != nil {
			line := fmt.Sprintf("%s%c %d more this week", axisIndent, glyphOverflow, ov.Count)
			if v.Selection.Kind() != timeline.SelectOverflow {
				line += " (--overflow to expand)"
			}
			fmt.Fprintln(w, formatOverflow(line))
		}
		fmt.Fprintln(w)
	}

	details := v.Details
	if v.Selection.IsNone() && strings.HasPrefix(details, timeline.NextPrefix) {
		details = formatNext(timeline.NextPrefix) + strings.TrimPrefix(details, timeline.NextPrefix)
	}
	fmt.Fprintf(w, "%s%s\n", axisIndent, details)

	if r.Status != "" {
		fmt.Fprintf(w, "%s%s\n", axisIndent, formatWarn("! "+r.Status))
	}
}

// renderAxis draws the window as an axis line carrying day ticks and
// event markers, plus a line of weekday labels under the ticks.
func renderAxis(v timeline.View, width int) (axis, labels string) {
	width = max(width, minAxisWidth)
	ax := v.Axis(width)

	line := make([]rune, width)
	for i, cell := range ax.Cells {
		line[i] = axisGlyphs[cell]
	}

	nameLen := 2
	if width/timeline.DaysPerWindow > 4 {
		nameLen = 3
	}
	names := []rune(strings.Repeat(" ", width))
	for i, col := range ax.Ticks {
		copy(names[col:], []rune(v.Window.Day(i).Format("Mon")[:nameLen]))
	}

	return string(line), strings.TrimRight(string(names), " ")
}

// eventTable lists the visible events, one row each.
func eventTable(v timeline.View, now time.Time) string {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48

	for _, pe := range v.Positioned() {
		ev := pe.Event
		glyph := string(glyphEvent)
		style := func(s string) string { return s }
		switch {
		case v.Selection.Kind() == timeline.SelectEvent && v.Selection.EventID() == ev.ID:
			glyph = string(glyphSelected)
			style = formatSelected
		case ev.ID == v.NextEventID:
			glyph = string(glyphNext)
			style = formatNext
		}
		tbl.AddRow(
			axisIndent+glyph,
			ev.Start.In(now.Location()).Format("Mon 2 Jan"),
			timeline.TimeRangeLabel(ev, now.Location()),
			style(ev.Title),
			formatMuted(timeline.RelativeDayLabel(ev.Start, now)),
			formatMuted(ev.ID),
		)
	}
	return tbl.String()
}

type weekOutput struct {
	Member    string          `json:"member" yaml:"member"`
	Offset    int             `json:"offset" yaml:"offset"`
	Label     string          `json:"label" yaml:"label"`
	Start     string          `json:"start" yaml:"start"`
	End       string          `json:"end" yaml:"end"`
	Events    []eventOutput   `json:"events" yaml:"events"`
	Overflow  *overflowOutput `json:"overflow,omitempty" yaml:"overflow,omitempty"`
	NextEvent string          `json:"next_event,omitempty" yaml:"next_event,omitempty"`
	Selection string          `json:"selection" yaml:"selection"`
	Details   string          `json:"details" yaml:"details"`
	Status    string          `json:"status,omitempty" yaml:"status,omitempty"`
}

type eventOutput struct {
	ID       string  `json:"id" yaml:"id"`
	Title    string  `json:"title" yaml:"title"`
	Start    string  `json:"start" yaml:"start"`
	End      string  `json:"end,omitempty" yaml:"end,omitempty"`
	Position float64 `json:"position" yaml:"position"`
	Relative string  `json:"relative" yaml:"relative"`
}

type overflowOutput struct {
	Count    int           `json:"count" yaml:"count"`
	Position float64       `json:"position" yaml:"position"`
	Events   []eventOutput `json:"events" yaml:"events"`
}

func newWeekOutput(r weekReport) weekOutput {
	v := r.View
	out := weekOutput{
		Member:    r.Member,
		Offset:    v.Offset,
		Label:     v.WindowLabel,
		Start:     v.Window.Start.Format(time.RFC3339),
		End:       v.Window.End.Format(time.RFC3339),
		Events:    make([]eventOutput, 0, len(v.Positioned())),
		NextEvent: v.NextEventID,
		Selection: v.Selection.String(),
		Details:   v.Details,
		Status:    r.Status,
	}
	for _, pe := range v.Positioned() {
		out.Events = append(out.Events, newEventOutput(pe.Event, pe.Position, r.Now))
	}
	if ov := v.Overflow(); ov != nil {
		bucket := &overflowOutput{Count: ov.Count, Position: ov.Position}
		for _, ev := range ov.Hidden {
			bucket.Events = append(bucket.Events, newEventOutput(ev, ov.Position, r.Now))
		}
		out.Overflow = bucket
	}
	return out
}

func newEventOutput(ev event.Event, pos float64, now time.Time) eventOutput {
	out := eventOutput{
		ID:       ev.ID,
		Title:    ev.Title,
		Start:    ev.Start.In(now.Location()).Format(time.RFC3339),
		Position: math.Round(pos*10000) / 10000,
		Relative: timeline.RelativeDayLabel(ev.Start, now),
	}
	if ev.HasEnd() {
		out.End = ev.End.In(now.Location()).Format(time.RFC3339)
	}
	return out
}
