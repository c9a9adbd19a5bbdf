package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/hearth/internal/timeline"
	"github.com/javiermolinar/hearth/internal/tui/commands"
)

type keyMap struct {
	PrevWeek   key.Binding
	NextWeek   key.Binding
	ThisWeek   key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Overflow   key.Binding
	Clear      key.Binding
	NextMember key.Binding
	PrevMember key.Binding
	Sync       key.Binding
	Reload     key.Binding
	Copy       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PrevWeek:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "prev week")),
		NextWeek:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next week")),
		ThisWeek:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "this week")),
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Select:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "details")),
		Overflow:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "more events")),
		Clear:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		NextMember: key.NewBinding(key.WithKeys("tab", "m"), key.WithHelp("tab/m", "next member")),
		PrevMember: key.NewBinding(key.WithKeys("shift+tab", "M"), key.WithHelp("S-tab/M", "prev member")),
		Sync:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy details")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevWeek, k.NextWeek, k.Select, k.NextMember, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevWeek, k.NextWeek, k.ThisWeek},
		{k.Up, k.Down, k.Select, k.Overflow, k.Clear},
		{k.NextMember, k.PrevMember, k.Sync, k.Reload},
		{k.Copy, k.Help, k.Quit},
	}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	LogKeyPress(msg)

	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help, m.keys.Clear, m.keys.Quit):
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	// Week navigation
	case key.Matches(msg, m.keys.PrevWeek):
		return m.moveTo(m.state.Retreat(), "prev_week")
	case key.Matches(msg, m.keys.NextWeek):
		return m.moveTo(m.state.Advance(), "next_week")
	case key.Matches(msg, m.keys.ThisWeek):
		if m.state.Offset == 0 {
			return m, nil
		}
		return m.moveTo(m.state.Jump(0), "this_week")

	// Event list
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.itemCount()-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Select):
		return m.selectCursor(), nil
	case key.Matches(msg, m.keys.Overflow):
		if m.view.Overflow() == nil {
			return m, nil
		}
		m.state = m.state.SelectOverflow()
		if !m.state.Selection.IsNone() {
			m.cursor = m.itemCount() - 1
		}
		m.rebuild()
		LogState(m, "select_overflow")
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.state.Selection = timeline.None()
		m.rebuild()
		return m, nil

	// Members
	case key.Matches(msg, m.keys.NextMember):
		return m.switchMember(1)
	case key.Matches(msg, m.keys.PrevMember):
		return m.switchMember(-1)

	case key.Matches(msg, m.keys.Sync):
		if m.syncing || len(m.members) == 0 || m.syncer == nil {
			return m, nil
		}
		m.syncing = true
		m.statusMsg = "Syncing " + m.member().Name + "..."
		return m, commands.SyncMember(m.syncer, m.member())
	case key.Matches(msg, m.keys.Reload):
		return m, m.loadWeek()

	case key.Matches(msg, m.keys.Copy):
		if m.copy == nil {
			return m, nil
		}
		return m, commands.CopyText(m.copy, m.view.Details)
	}

	return m, nil
}

// moveTo switches to a new week and reloads it.
func (m Model) moveTo(state timeline.State, reason string) (tea.Model, tea.Cmd) {
	m.state = state
	m.events = nil
	m.cursor = 0
	m.rebuild()
	LogState(m, reason)
	return m, m.loadWeek()
}

// switchMember cycles through configured members, keeping the week.
func (m Model) switchMember(delta int) (tea.Model, tea.Cmd) {
	if len(m.members) < 2 {
		return m, nil
	}
	n := len(m.members)
	m.memberIdx = ((m.memberIdx+delta)%n + n) % n
	m.state.Selection = timeline.None()
	m.applyStyles()
	m.events = nil
	m.cursor = 0
	m.syncStatus = ""
	m.rebuild()
	LogState(m, "switch_member")
	return m, m.loadWeek()
}

// selectCursor toggles the detail view for the item under the cursor.
func (m Model) selectCursor() Model {
	visible := m.view.Positioned()
	switch {
	case m.cursor < len(visible):
		m.state = m.state.SelectEvent(visible[m.cursor].Event.ID)
	case m.view.Overflow() != nil:
		m.state = m.state.SelectOverflow()
	default:
		return m
	}
	m.rebuild()
	LogState(m, "select")
	return m
}
