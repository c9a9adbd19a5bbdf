package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/hearth/internal/timeline"
	"github.com/javiermolinar/hearth/internal/tui/view"
)

// Minimum usable terminal size.
const (
	minWidth  = 40
	minHeight = 12
)

// Fixed body lines: header, gap, day labels, axis, gap, gap before details.
const bodyChromeLines = 6

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	innerW := m.width - 2
	if m.width < minWidth || m.height < minHeight {
		return "Terminal too small"
	}

	footer := m.renderFooter(innerW)
	bodyH := m.height - lipgloss.Height(footer)
	body := m.placeBox(innerW, bodyH, lipgloss.Top, m.renderBody(innerW, bodyH))

	content := lipgloss.JoinVertical(lipgloss.Left, body, footer)
	app := m.styles.AppStyle.Render(content)
	out := view.PadLinesWithBackground(app, m.width, m.height, m.styles.colorBg)

	if m.showHelp {
		overlay := m.styles.OverlayStyle.Render(m.help.FullHelpView(m.keys.FullHelp()))
		out = view.RenderOverlay(out, overlay, m.width, m.height, m.styles.OverlayBgColor)
	}
	return out
}

// placeBox renders content in an explicit lipgloss box.
func (m Model) placeBox(w, h int, vAlign lipgloss.Position, content string) string {
	return view.PlaceBox(w, h, vAlign, content, m.styles.colorBg)
}

func (m Model) renderBody(width, height int) string {
	axis := m.view.Axis(width)
	details := m.renderDetails(width)

	lines := []string{
		m.renderHeader(width),
		"",
		view.DayLabels(m.view.Window, axis.Ticks, len(axis.Cells), m.now(), m.styles.DayLabelStyle, m.styles.DayLabelTodayStyle),
		view.RenderAxis(axis, m.styles.Axis),
		"",
	}

	listH := height - bodyChromeLines - len(details)
	lines = append(lines, m.renderList(width, listH)...)
	lines = append(lines, "")
	lines = append(lines, details...)
	return strings.Join(lines, "\n")
}

// renderHeader draws the title, member tabs and the window label.
func (m Model) renderHeader(width int) string {
	var b strings.Builder
	b.WriteString(m.styles.TitleStyle.Render(" hearth "))
	for i, member := range m.members {
		style := m.styles.MemberStyle
		if i == m.memberIdx {
			style = m.styles.MemberActiveStyle
		}
		b.WriteString(style.Render(member.Name))
	}

	label := "  " + m.view.WindowLabel
	if m.view.Offset == 0 {
		label += " (" + timeline.ShortDateLabel(m.view.Window.Start) + "–" + timeline.ShortDateLabel(m.view.Window.End) + ")"
	}
	switch {
	case m.syncing:
		label += " [Syncing...]"
	case m.loading:
		label += " [Loading...]"
	}
	b.WriteString(m.styles.RangeStyle.Render(label))

	line := view.TruncateLine(b.String(), width)
	if pad := width - lipgloss.Width(line); pad > 0 {
		line += m.styles.HeaderStyle.Render(strings.Repeat(" ", pad))
	}
	return line
}

// renderList draws the visible events and the overflow row, scrolled so
// the cursor stays in view.
func (m Model) renderList(width, height int) []string {
	if height <= 0 {
		return nil
	}
	if m.view.IsEmpty() {
		text := timeline.NoEventsText
		if m.loading {
			text = "Loading..."
		}
		return []string{m.styles.EmptyStyle.Render("  " + text)}
	}

	var rows []string
	for i, pe := range m.view.Positioned() {
		rows = append(rows, m.renderEventRow(pe, i, width))
	}
	if ov := m.view.Overflow(); ov != nil {
		rows = append(rows, m.renderOverflowRow(ov, len(rows), width))
	}

	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := min(start+height, len(rows))
	return rows[start:end]
}

func (m Model) rowStyle(idx int, selected, past bool) lipgloss.Style {
	switch {
	case selected:
		return m.styles.RowSelectedStyle
	case idx == m.cursor:
		return m.styles.RowCursorStyle
	case past:
		return m.styles.RowPastStyle
	default:
		return m.styles.RowStyle
	}
}

func (m Model) cursorPrefix(idx int) string {
	if idx == m.cursor {
		return "› "
	}
	return "  "
}

func (m Model) renderEventRow(pe timeline.PositionedEvent, idx, width int) string {
	ev := pe.Event
	now := m.now()
	loc := now.Location()

	selected := m.view.Selection.Kind() == timeline.SelectEvent && m.view.Selection.EventID() == ev.ID
	style := m.rowStyle(idx, selected, ev.Start.Before(now))

	marker, markerStyle := view.GlyphEvent, m.styles.MarkerStyle
	if ev.ID == m.view.NextEventID {
		marker, markerStyle = view.GlyphNext, m.styles.NextMarkerStyle
	}
	markerStyle = markerStyle.Background(style.GetBackground())

	when := fmt.Sprintf(" %-6s %-11s ", ev.Start.In(loc).Format("Mon 2"), timeline.TimeRangeLabel(ev, loc))
	rel := " " + timeline.RelativeDayLabel(ev.Start, now)

	prefix := m.cursorPrefix(idx)
	titleW := width - lipgloss.Width(prefix) - lipgloss.Width(marker) - lipgloss.Width(when) - lipgloss.Width(rel)
	title := view.TruncateLine(ev.Title, titleW)
	if pad := titleW - lipgloss.Width(title); pad > 0 {
		title += strings.Repeat(" ", pad)
	}

	return style.Render(prefix) + markerStyle.Render(marker) + style.Render(when+title+rel)
}

func (m Model) renderOverflowRow(ov *timeline.OverflowBucket, idx, width int) string {
	selected := m.view.Selection.Kind() == timeline.SelectOverflow
	style := m.rowStyle(idx, selected, false)
	if !selected && idx != m.cursor {
		style = m.styles.OverflowStyle
	}

	text := fmt.Sprintf("%s%s %d more this week", m.cursorPrefix(idx), view.GlyphOverflow, ov.Count)
	text = view.TruncateLine(text, width)
	if pad := width - lipgloss.Width(text); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	return style.Render(text)
}

// renderDetails draws the detail line and any sync warning.
func (m Model) renderDetails(width int) []string {
	var lines []string

	details := m.view.Details
	if rest, ok := strings.CutPrefix(details, timeline.NextPrefix); ok {
		prefix := m.styles.DetailsPrefixStyle.Render(timeline.NextPrefix)
		lines = append(lines, prefix+m.styles.DetailsStyle.Render(view.TruncateLine(rest, width-lipgloss.Width(timeline.NextPrefix))))
	} else {
		wrapped := m.styles.DetailsStyle.Width(width).Render(details)
		lines = append(lines, strings.Split(wrapped, "\n")...)
	}

	if m.syncStatus != "" {
		lines = append(lines, m.styles.WarningStyle.Render(view.TruncateLine("! "+m.syncStatus, width)))
	}
	return lines
}

// renderFooter draws the status and help lines.
func (m Model) renderFooter(width int) string {
	status := " "
	if m.statusMsg != "" {
		status = view.TruncateLine(m.statusMsg, width)
	}
	statusStyle := m.styles.StatusStyle
	if m.err != nil {
		statusStyle = m.styles.WarningStyle
	}

	helpLine := m.help.ShortHelpView(m.keys.ShortHelp())
	return view.PlaceBox(width, 2, lipgloss.Bottom, statusStyle.Render(status)+"\n"+helpLine, m.styles.colorBg)
}
