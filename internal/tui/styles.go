package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/hearth/internal/tui/theme"
	"github.com/javiermolinar/hearth/internal/tui/view"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	colorBg          lipgloss.Color
	colorBgHighlight lipgloss.Color
	colorFg          lipgloss.Color
	colorFgMuted     lipgloss.Color
	colorAccent      lipgloss.Color
	colorWarning     lipgloss.Color

	// Header band
	HeaderStyle       lipgloss.Style
	TitleStyle        lipgloss.Style
	MemberStyle       lipgloss.Style
	MemberActiveStyle lipgloss.Style
	RangeStyle        lipgloss.Style

	// Axis
	DayLabelStyle      lipgloss.Style
	DayLabelTodayStyle lipgloss.Style
	Axis               view.AxisStyles

	// Event list
	RowStyle         lipgloss.Style
	RowPastStyle     lipgloss.Style
	RowCursorStyle   lipgloss.Style
	RowSelectedStyle lipgloss.Style
	MarkerStyle      lipgloss.Style
	NextMarkerStyle  lipgloss.Style
	OverflowStyle    lipgloss.Style
	EmptyStyle       lipgloss.Style

	// Details and footer
	DetailsStyle       lipgloss.Style
	DetailsPrefixStyle lipgloss.Style
	WarningStyle       lipgloss.Style
	StatusStyle        lipgloss.Style
	HelpStyle          lipgloss.Style

	// Help overlay
	OverlayStyle     lipgloss.Style
	OverlayKeyStyle  lipgloss.Style
	OverlayTextStyle lipgloss.Style
	OverlayBgColor   lipgloss.Color

	// App container
	AppStyle lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	s := &Styles{}
	palette := theme.NewPalette(t)

	s.colorBg = palette.Bg
	s.colorBgHighlight = palette.BgHighlight
	s.colorFg = palette.Fg
	s.colorFgMuted = palette.FgMuted
	s.colorAccent = palette.Accent
	s.colorWarning = palette.Warning

	base := lipgloss.NewStyle().
		Foreground(palette.Fg).
		Background(palette.Bg)

	s.HeaderStyle = lipgloss.NewStyle().
		Foreground(palette.Fg).
		Background(palette.BgHighlight)
	s.TitleStyle = s.HeaderStyle.
		Bold(true).
		Foreground(palette.Accent)
	s.MemberStyle = s.HeaderStyle.
		Foreground(palette.FgMuted).
		Padding(0, 1)
	s.MemberActiveStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(palette.TextOnAccent).
		Background(palette.Accent).
		Padding(0, 1)
	s.RangeStyle = s.HeaderStyle

	s.DayLabelStyle = base.Foreground(palette.FgMuted)
	s.DayLabelTodayStyle = base.
		Foreground(palette.Accent).
		Bold(true)

	s.Axis = view.AxisStyles{
		Line:     base.Foreground(palette.Axis),
		Tick:     base.Foreground(palette.FgMuted),
		Event:    base.Foreground(palette.Event),
		Overflow: base.Foreground(palette.Overflow).Bold(true),
		Next:     base.Foreground(palette.Next).Bold(true),
		Selected: lipgloss.NewStyle().
			Foreground(palette.TextOnSelected).
			Background(palette.SelectedBg).
			Bold(true),
	}

	s.RowStyle = base
	s.RowPastStyle = base.Foreground(palette.FgMuted)
	s.RowCursorStyle = lipgloss.NewStyle().
		Foreground(palette.Fg).
		Background(palette.BgSelection)
	s.RowSelectedStyle = lipgloss.NewStyle().
		Foreground(palette.TextOnSelected).
		Background(palette.SelectedBg).
		Bold(true)
	s.MarkerStyle = lipgloss.NewStyle().Foreground(palette.Event)
	s.NextMarkerStyle = lipgloss.NewStyle().Foreground(palette.Next).Bold(true)
	s.OverflowStyle = base.Foreground(palette.Overflow)
	s.EmptyStyle = base.
		Foreground(palette.FgMuted).
		Italic(true)

	s.DetailsStyle = base
	s.DetailsPrefixStyle = base.
		Foreground(palette.Next).
		Bold(true)
	s.WarningStyle = base.Foreground(palette.Warning)
	s.StatusStyle = base.Foreground(palette.Accent)
	s.HelpStyle = base.Foreground(palette.FgMuted)

	s.OverlayBgColor = palette.BgHighlight
	s.OverlayStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(palette.Accent).
		BorderBackground(palette.BgHighlight).
		Foreground(palette.Fg).
		Background(palette.BgHighlight).
		Padding(1, 2)
	s.OverlayKeyStyle = lipgloss.NewStyle().
		Foreground(palette.Accent).
		Background(palette.BgHighlight).
		Bold(true)
	s.OverlayTextStyle = lipgloss.NewStyle().
		Foreground(palette.Fg).
		Background(palette.BgHighlight)

	s.AppStyle = lipgloss.NewStyle().
		Background(palette.Bg).
		Padding(0, 1)

	return s
}
