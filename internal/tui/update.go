package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/hearth/internal/db"
	"github.com/javiermolinar/hearth/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case commands.WeekLoadedMsg:
		if msg.Member != m.member().Name || msg.Offset != m.state.Offset {
			LogEvent("STALE_LOAD", map[string]any{"member": msg.Member, "offset": msg.Offset})
			return m, nil
		}
		m.events = msg.Events
		m.syncStatus = msg.SyncStatus
		m.loading = false
		m.err = nil
		m.rebuild()
		LogState(m, "week_loaded")
		if msg.Dropped > 0 {
			return m, statusCmd(fmt.Sprintf("Skipped %d invalid events", msg.Dropped))
		}
		return m, nil

	case commands.SyncedMsg:
		m.syncing = false
		if msg.Err != nil {
			LogError("sync", msg.Err)
			m.statusMsg = fmt.Sprintf("Sync failed: %v", msg.Err)
			m.statusTime = m.now().Add(5 * time.Second)
			return m, tea.Batch(m.loadWeek(), commands.ClearStatusAfter(5*time.Second))
		}
		text := fmt.Sprintf("Synced %d events", msg.Report.Stored)
		if msg.Report.Status == db.SyncPartial {
			text += fmt.Sprintf(" (%d of %d calendars failed)", msg.Report.Failed, msg.Report.Sources)
		}
		return m, tea.Batch(m.loadWeek(), statusCmd(text))

	case commands.TickMsg:
		window := m.view.Window
		m.rebuild()
		cmds := []tea.Cmd{commands.Tick(refreshInterval)}
		if !m.view.Window.Equal(window) {
			// The day rolled over, so the window moved with it. A detail
			// view refers to the old window and is dropped.
			m.state = m.state.Jump(m.state.Offset)
			m.cursor = 0
			m.events = nil
			m.rebuild()
			cmds = append(cmds, m.loadWeek())
		}
		return m, tea.Batch(cmds...)

	case commands.ErrMsg:
		LogError("command", msg.Err)
		m.err = msg.Err
		m.loading = false
		m.statusMsg = fmt.Sprintf("Error: %v", msg.Err)
		m.statusTime = m.now().Add(5 * time.Second)
		return m, commands.ClearStatusAfter(5 * time.Second)

	case commands.StatusMsgCmd:
		m.statusMsg = msg.Msg
		m.statusTime = m.now().Add(3 * time.Second)
		return m, commands.ClearStatusAfter(3 * time.Second)

	case commands.ClearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
		}
		return m, nil
	}

	return m, nil
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return commands.StatusMsgCmd{Msg: text}
	}
}
