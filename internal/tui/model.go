// Package tui provides the terminal user interface for hearth.
package tui

import (
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/hearth/internal/calsync"
	"github.com/javiermolinar/hearth/internal/config"
	"github.com/javiermolinar/hearth/internal/db"
	"github.com/javiermolinar/hearth/internal/event"
	"github.com/javiermolinar/hearth/internal/ics"
	"github.com/javiermolinar/hearth/internal/log"
	"github.com/javiermolinar/hearth/internal/timeline"
	"github.com/javiermolinar/hearth/internal/tui/commands"
	"github.com/javiermolinar/hearth/internal/tui/theme"
)

// refreshInterval is how often the view is rebuilt against the clock.
const refreshInterval = time.Minute

// Model is the main TUI model.
type Model struct {
	// Dependencies
	store  commands.Store
	syncer commands.Syncer
	config *config.Config
	copy   func(string) error

	// Theme and styles
	theme  *theme.Theme
	styles *Styles
	keys   keyMap
	help   help.Model

	// State
	members    []config.Member
	memberIdx  int
	state      timeline.State
	events     []event.Event // current member's events for the shown window
	view       timeline.View
	cursor     int // index into visible events, then the overflow row
	loading    bool
	syncing    bool
	showHelp   bool
	syncStatus string

	// Terminal dimensions
	width  int
	height int

	// Messages
	statusMsg  string    // Temporary status/error message
	statusTime time.Time // When to clear message

	err     error
	nowFunc func() time.Time
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithNow overrides the clock.
func WithNow(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.nowFunc = now
	}
}

// WithClipboard overrides the clipboard writer.
func WithClipboard(write func(string) error) ModelOption {
	return func(m *Model) {
		m.copy = write
	}
}

// WithMember starts on the named member instead of the default one.
func WithMember(name string) ModelOption {
	return func(m *Model) {
		for i, member := range m.members {
			if member.Name == name {
				m.memberIdx = i
			}
		}
	}
}

// New creates a new TUI model.
func New(store commands.Store, syncer commands.Syncer, cfg *config.Config, opts ...ModelOption) *Model {
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load(theme.DefaultName)
	}

	m := &Model{
		store:   store,
		syncer:  syncer,
		config:  cfg,
		copy:    clipboard.WriteAll,
		theme:   t,
		keys:    defaultKeyMap(),
		help:    help.New(),
		members: cfg.Members,
		loading: true,
		nowFunc: time.Now,
	}
	if def, err := cfg.ResolveMember(""); err == nil {
		WithMember(def.Name)(m)
	}

	for _, opt := range opts {
		opt(m)
	}

	m.applyStyles()
	m.rebuild()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadWeek(), commands.Tick(refreshInterval))
}

// member returns the member being shown, or the zero Member when none are
// configured.
func (m Model) member() config.Member {
	if m.memberIdx < len(m.members) {
		return m.members[m.memberIdx]
	}
	return config.Member{}
}

// applyStyles derives styles for the current member's color.
func (m *Model) applyStyles() {
	m.styles = NewStyles(m.theme.WithEventColor(m.member().Color))
	m.help.Styles.ShortKey = m.styles.HelpStyle.Bold(true)
	m.help.Styles.ShortDesc = m.styles.HelpStyle
	m.help.Styles.ShortSeparator = m.styles.HelpStyle
	m.help.Styles.Ellipsis = m.styles.HelpStyle
	m.help.Styles.FullKey = m.styles.OverlayKeyStyle
	m.help.Styles.FullDesc = m.styles.OverlayTextStyle
	m.help.Styles.FullSeparator = m.styles.OverlayTextStyle
}

// now returns the current instant.
func (m Model) now() time.Time {
	return m.nowFunc()
}

// rebuild derives the view from the loaded events and the current clock.
func (m *Model) rebuild() {
	m.view = m.state.Build(m.events, m.now(), m.config.Timeline.VisibleCap)
	if n := m.itemCount(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// itemCount is the number of rows the cursor can visit.
func (m Model) itemCount() int {
	n := len(m.view.Positioned())
	if m.view.Overflow() != nil {
		n++
	}
	return n
}

// loadWeek reads the current member's window from the store.
func (m Model) loadWeek() tea.Cmd {
	if m.store == nil || len(m.members) == 0 {
		return nil
	}
	now := m.now()
	window := timeline.WindowFor(m.state.Offset, now)
	return commands.LoadWeek(m.store, m.member().Name, m.state.Offset, window, now.Location())
}

// RunWithDebug starts the TUI with optional debug logging.
func RunWithDebug(store *db.SQLite, cfg *config.Config, debug bool, opts ...ModelOption) error {
	if err := InitDebugLogger(debug); err != nil {
		return err
	}
	defer CloseDebugLogger()

	// stderr belongs to the alternate screen while the program runs.
	log.SetOutput(debugLogWriter{})
	defer log.SetOutput(os.Stderr)

	syncer := calsync.New(cfg, store, ics.NewFetcher(cfg.Sync.CacheDir, nil))
	model := New(store, syncer, cfg, opts...)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
