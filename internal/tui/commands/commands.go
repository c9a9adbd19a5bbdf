// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/hearth/internal/calsync"
	"github.com/javiermolinar/hearth/internal/config"
	"github.com/javiermolinar/hearth/internal/db"
	"github.com/javiermolinar/hearth/internal/event"
	"github.com/javiermolinar/hearth/internal/timeline"
)

// Store is the cached event store the TUI reads from.
type Store interface {
	event.Source
	Members(ctx context.Context) ([]db.MemberSummary, error)
}

// Syncer refreshes one member's calendars into the store.
type Syncer interface {
	SyncMember(ctx context.Context, m config.Member) (calsync.Report, error)
}

// WeekLoadedMsg is sent when a member's week has been read from the store.
// Member and Offset identify the request so stale loads can be ignored.
type WeekLoadedMsg struct {
	Member     string
	Offset     int
	Events     []event.Event
	Dropped    int
	SyncStatus string
}

// SyncedMsg is sent when a member sync finishes, successfully or not.
type SyncedMsg struct {
	Report calsync.Report
	Err    error
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// TickMsg is sent periodically so the next-event marker follows the clock.
type TickMsg struct {
	Now time.Time
}

// LoadWeek reads member's events for the window at offset. An empty or
// unavailable cache still produces a WeekLoadedMsg so the empty state renders.
func LoadWeek(store Store, member string, offset int, window timeline.WeekWindow, loc *time.Location) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		loaded, err := event.Load(ctx, store, member, member, window.Start, window.End, loc)
		if err != nil && !errors.Is(err, event.ErrEmptySource) {
			return ErrMsg{Err: err}
		}

		summaries, err := store.Members(ctx)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("reading sync state: %w", err)}
		}

		return WeekLoadedMsg{
			Member:     member,
			Offset:     offset,
			Events:     loaded.Events,
			Dropped:    len(loaded.Dropped),
			SyncStatus: db.SyncWarning(summaries, member),
		}
	}
}

// SyncMember fetches member's calendars into the store.
func SyncMember(syncer Syncer, member config.Member) tea.Cmd {
	return func() tea.Msg {
		rep, err := syncer.SyncMember(context.Background(), member)
		return SyncedMsg{Report: rep, Err: err}
	}
}

// CopyText writes text to the clipboard through write.
func CopyText(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		if err := write(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return StatusMsgCmd{Msg: "Copied details"}
	}
}

// Tick schedules the next TickMsg after d.
func Tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg{Now: t}
	})
}

// ClearStatusAfter schedules a ClearStatusMsg after d.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
