package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/hearth/internal/calsync"
	"github.com/javiermolinar/hearth/internal/config"
	"github.com/javiermolinar/hearth/internal/db"
	"github.com/javiermolinar/hearth/internal/event"
	"github.com/javiermolinar/hearth/internal/timeline"
	"github.com/javiermolinar/hearth/internal/tui/commands"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

var refNow = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC) // Monday

type fakeStore struct {
	records   map[string][]event.Record
	summaries []db.MemberSummary
}

func (f fakeStore) ListRecords(ctx context.Context, member string, start, end time.Time) ([]event.Record, error) {
	return f.records[member], nil
}

func (f fakeStore) Members(ctx context.Context) ([]db.MemberSummary, error) {
	return f.summaries, nil
}

type fakeSyncer struct {
	synced []string
}

func (f *fakeSyncer) SyncMember(ctx context.Context, m config.Member) (calsync.Report, error) {
	f.synced = append(f.synced, m.Name)
	return calsync.Report{Member: m.Name, Status: db.SyncOK, Sources: 1, Stored: 3}, nil
}

func at(day, hour int) time.Time {
	return time.Date(2024, 6, day, hour, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func aliceEvents() []event.Event {
	return []event.Event{
		{ID: "swim", Title: "Swim lesson", Start: at(11, 17), End: ptr(at(11, 18))},
		{ID: "dentist", Title: "Dentist", Start: at(12, 9)},
		{ID: "camp", Title: "Camp", Start: at(14, 0), End: ptr(at(15, 0))},
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Timeline.VisibleCap = 2
	cfg.Members = []config.Member{
		{Name: "Alice", Color: "#f38ba8"},
		{Name: "Bea"},
	}
	return cfg
}

func newTestModel(t *testing.T, opts ...ModelOption) Model {
	t.Helper()
	store := fakeStore{
		records: map[string][]event.Record{
			"Alice": {
				{ID: "swim", Title: "Swim lesson", Start: "2024-06-11T17:00:00Z", End: "2024-06-11T18:00:00Z"},
			},
		},
		summaries: []db.MemberSummary{{Name: "Alice", SyncedAt: refNow, Status: db.SyncOK}},
	}
	opts = append([]ModelOption{WithNow(func() time.Time { return refNow })}, opts...)
	return *New(store, &fakeSyncer{}, testConfig(), opts...)
}

func loaded(t *testing.T, m Model, events []event.Event) Model {
	t.Helper()
	updated, _ := m.Update(commands.WeekLoadedMsg{Member: m.member().Name, Offset: m.state.Offset, Events: events})
	return updated.(Model)
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestNew_DefaultMember(t *testing.T) {
	cfg := testConfig()
	cfg.Timeline.DefaultMember = "bea"

	m := New(fakeStore{}, nil, cfg, WithNow(func() time.Time { return refNow }))
	if m.member().Name != "Bea" {
		t.Fatalf("member = %q, want Bea", m.member().Name)
	}
	if !m.loading {
		t.Error("new model should be loading")
	}
}

func TestNew_NoMembers(t *testing.T) {
	cfg := config.Default()
	cfg.Members = nil

	m := New(fakeStore{}, nil, cfg)
	if m.loadWeek() != nil {
		t.Error("loadWeek should be a no-op without members")
	}
	if !m.view.IsEmpty() {
		t.Error("view should be empty")
	}
}

func TestUpdate_WeekLoaded(t *testing.T) {
	m := loaded(t, newTestModel(t), aliceEvents())

	if m.loading {
		t.Error("loading should be cleared")
	}
	if m.view.NextEventID != "swim" {
		t.Errorf("next = %q, want swim", m.view.NextEventID)
	}
	if len(m.view.Positioned()) != 2 || m.view.Overflow() == nil || m.view.Overflow().Count != 1 {
		t.Errorf("layout = %+v", m.view.Layout)
	}
	if m.itemCount() != 3 {
		t.Errorf("itemCount = %d, want 3", m.itemCount())
	}
}

func TestUpdate_StaleLoadIgnored(t *testing.T) {
	m := loaded(t, newTestModel(t), aliceEvents())

	tests := []struct {
		name string
		msg  commands.WeekLoadedMsg
	}{
		{name: "other offset", msg: commands.WeekLoadedMsg{Member: "Alice", Offset: 1}},
		{name: "other member", msg: commands.WeekLoadedMsg{Member: "Bea", Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, _ := m.Update(tt.msg)
			if got := len(updated.(Model).events); got != 3 {
				t.Errorf("events = %d, want 3", got)
			}
		})
	}
}

func TestKeys_WeekNavigation(t *testing.T) {
	m := loaded(t, newTestModel(t), aliceEvents())

	m, cmd := press(t, m, "l")
	if m.state.Offset != 1 || m.events != nil {
		t.Fatalf("offset = %d, events = %d", m.state.Offset, len(m.events))
	}
	if cmd == nil {
		t.Fatal("expected a load command")
	}
	msg, ok := cmd().(commands.WeekLoadedMsg)
	if !ok || msg.Offset != 1 || msg.Member != "Alice" {
		t.Fatalf("load msg = %+v", msg)
	}
	if m.view.WindowLabel != "Week of Jun 17–Jun 23" {
		t.Errorf("label = %q", m.view.WindowLabel)
	}

	m, _ = press(t, m, "h")
	m, _ = press(t, m, "h")
	if m.state.Offset != -1 {
		t.Errorf("offset = %d, want -1", m.state.Offset)
	}

	m, cmd = press(t, m, "t")
	if m.state.Offset != 0 || cmd == nil {
		t.Errorf("offset = %d, want 0 with reload", m.state.Offset)
	}
	if _, cmd = press(t, m, "t"); cmd != nil {
		t.Error("t on this week should not reload")
	}
}

func TestKeys_SelectEvent(t *testing.T) {
	m := loaded(t, newTestModel(t), aliceEvents())

	m, _ = press(t, m, "j")
	m, _ = press(t, m, "enter")
	if m.view.Selection.EventID() != "dentist" {
		t.Fatalf("selection = %s, want event(dentist)", m.view.Selection)
	}
	if !strings.HasPrefix(m.view.Details, "Dentist · Wednesday 12 Jun") {
		t.Errorf("details = %q", m.view.Details)
	}

	m, _ = press(t, m, "enter")
	if !m.view.Selection.IsNone() {
		t.Errorf("second enter should clear, got %s", m.view.Selection)
	}
	if !strings.HasPrefix(m.view.Details, timeline.NextPrefix+"Swim lesson") {
		t.Errorf("details = %q", m.view.Details)
	}
}

func TestKeys_CursorBounds(t *testing.T) {
	m := loaded(t, newTestModel(t), aliceEvents())

	m, _ = press(t, m, "k")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	for range 5 {
		m, _ = press(t, m, "j")
	}
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}

	m, _ = press(t, m, "enter")
	if m.view.Selection.Kind() != timeline.SelectOverflow {
		t.Errorf("enter on overflow row = %s", m.view.Selection)
	}
}

func TestKeys_Overflow(t *testing.T) {
	m := loaded(t, newTestModel(t), aliceEvents())

	m, _ = press(t, m, "o")
	if m.view.Selection.Kind() != timeline.SelectOverflow {
		t.Fatalf("selection = %s, want overflow", m.view.Selection)
	}
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want overflow row 2", m.cursor)
	}
	if m.view.Details != timeline.OverflowPrefix+"Camp" {
		t.Errorf("details = %q", m.view.Details)
	}

	m, _ = press(t, m, "o")
	if !m.view.Selection.IsNone() {
		t.Errorf("second o should clear, got %s", m.view.Selection)
	}

	m, _ = press(t, m, "o")
	m, _ = press(t, m, "esc")
	if !m.view.Selection.IsNone() {
		t.Errorf("esc should clear, got %s", m.view.Selection)
	}
}

func TestKeys_OverflowWithoutBucket(t *testing.T) {
	m := loaded(t, newTestModel(t), aliceEvents()[:1])

	m, _ = press(t, m, "o")
	if !m.view.Selection.IsNone() {
		t.Errorf("selection = %s, want none", m.view.Selection)
	}
}

func TestKeys_SwitchMember(t *testing.T) {
	m := loaded(t, newTestModel(t), aliceEvents())
	m, _ = press(t, m, "o")

	m, cmd := press(t, m, "tab")
	if m.member().Name != "Bea" {
		t.Fatalf("member = %q, want Bea", m.member().Name)
	}
	if !m.view.Selection.IsNone() || !m.view.IsEmpty() {
		t.Error("switching member should clear selection and events")
	}
	msg, ok := cmd().(commands.WeekLoadedMsg)
	if !ok || msg.Member != "Bea" || msg.SyncStatus != db.NotSyncedText {
		t.Fatalf("load msg = %+v", msg)
	}

	updated, _ := m.Update(commands.WeekLoadedMsg{Member: "Alice", Events: aliceEvents()})
	if !updated.(Model).view.IsEmpty() {
		t.Error("late Alice load should be ignored while showing Bea")
	}

	m, _ = press(t, m, "M")
	if m.member().Name != "Alice" {
		t.Errorf("member = %q, want Alice", m.member().Name)
	}
}

func TestKeys_CopyDetails(t *testing.T) {
	var copied string
	m := loaded(t, newTestModel(t, WithClipboard(func(s string) error {
		copied = s
		return nil
	})), aliceEvents())

	_, cmd := press(t, m, "y")
	if _, ok := cmd().(commands.StatusMsgCmd); !ok {
		t.Fatal("expected status message")
	}
	if copied != m.view.Details {
		t.Errorf("copied = %q, want %q", copied, m.view.Details)
	}
}

func TestKeys_Sync(t *testing.T) {
	m := loaded(t, newTestModel(t), aliceEvents())

	m, cmd := press(t, m, "s")
	if !m.syncing || !strings.HasPrefix(m.statusMsg, "Syncing Alice") {
		t.Fatalf("syncing = %t, status = %q", m.syncing, m.statusMsg)
	}
	if _, again := press(t, m, "s"); again != nil {
		t.Error("second sync while syncing should be ignored")
	}

	synced, ok := cmd().(commands.SyncedMsg)
	if !ok || synced.Report.Stored != 3 {
		t.Fatalf("synced = %+v", synced)
	}
	updated, next := m.Update(synced)
	if updated.(Model).syncing || next == nil {
		t.Error("sync completion should clear syncing and reload")
	}
}

func TestUpdate_TickFollowsClock(t *testing.T) {
	now := refNow
	events := append([]event.Event{{ID: "call", Title: "School call", Start: at(10, 9)}}, aliceEvents()...)
	m := loaded(t, newTestModel(t, WithNow(func() time.Time { return now })), events)
	if m.view.NextEventID != "call" {
		t.Fatalf("next = %q, want call", m.view.NextEventID)
	}

	now = refNow.Add(90 * time.Minute)
	updated, cmd := m.Update(commands.TickMsg{Now: now})
	m = updated.(Model)
	if m.view.NextEventID != "swim" {
		t.Errorf("next = %q, want swim once the call started", m.view.NextEventID)
	}
	if len(m.events) != 4 {
		t.Errorf("events = %d, want kept within the same window", len(m.events))
	}
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
}

func TestUpdate_TickReloadsOnNewDay(t *testing.T) {
	now := refNow
	m := loaded(t, newTestModel(t, WithNow(func() time.Time { return now })), aliceEvents())
	m, _ = press(t, m, "o")
	if m.view.Selection.Kind() != timeline.SelectOverflow {
		t.Fatalf("selection = %s, want overflow", m.view.Selection)
	}

	now = refNow.AddDate(0, 0, 1)
	updated, _ := m.Update(commands.TickMsg{Now: now})
	m = updated.(Model)
	if m.events != nil {
		t.Error("events should be dropped when the window moves")
	}
	if !m.view.Selection.IsNone() || m.cursor != 0 {
		t.Errorf("selection = %s, cursor = %d, want cleared", m.view.Selection, m.cursor)
	}
	if !m.view.Window.Start.Equal(time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("window start = %v", m.view.Window.Start)
	}
}

func TestUpdate_ErrMsg(t *testing.T) {
	m := newTestModel(t)
	updated, cmd := m.Update(commands.ErrMsg{Err: event.ErrUpstreamUnavailable})
	m = updated.(Model)
	if m.loading || m.err == nil || !strings.Contains(m.statusMsg, "calendar unavailable") {
		t.Errorf("loading = %t, err = %v, status = %q", m.loading, m.err, m.statusMsg)
	}
	if cmd == nil {
		t.Error("expected clear status command")
	}
}

func TestView(t *testing.T) {
	m := loaded(t, newTestModel(t), aliceEvents())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)

	out := m.View()
	for _, want := range []string{
		"hearth",
		"Alice",
		"This week (Jun 10–Jun 16)",
		"Mon 10",
		"◆",
		"Swim lesson",
		"17:00-18:00",
		"Tomorrow",
		"+ 1 more this week",
		"Next: Swim lesson · Tuesday 11 Jun · Tomorrow",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if lines := strings.Split(out, "\n"); len(lines) != 24 {
		t.Errorf("view height = %d, want 24", len(lines))
	}
}

func TestView_EmptyAndWarning(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(commands.WeekLoadedMsg{Member: "Alice", SyncStatus: db.NotSyncedText})
	updated, _ = updated.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	out := updated.(Model).View()
	if !strings.Contains(out, timeline.NoEventsText) {
		t.Error("view missing empty state")
	}
	if !strings.Contains(out, "! "+db.NotSyncedText) {
		t.Error("view missing sync warning")
	}
}

func TestView_Sizes(t *testing.T) {
	m := newTestModel(t)
	if got := m.View(); got != "Loading..." {
		t.Errorf("unsized view = %q", got)
	}
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 5})
	if got := updated.(Model).View(); got != "Terminal too small" {
		t.Errorf("small view = %q", got)
	}
}

func TestView_HelpOverlay(t *testing.T) {
	m := loaded(t, newTestModel(t), aliceEvents())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = updated.(Model)

	m, _ = press(t, m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "more events") {
		t.Fatal("help overlay should list all bindings")
	}

	m, cmd := press(t, m, "l")
	if m.state.Offset != 0 || cmd != nil {
		t.Error("keys other than close should be swallowed while help is open")
	}
	m, _ = press(t, m, "?")
	if m.showHelp {
		t.Error("? should close help")
	}
}
