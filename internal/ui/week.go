package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/hearth/internal/config"
	"github.com/javiermolinar/hearth/internal/dateutil"
	"github.com/javiermolinar/hearth/internal/db"
	"github.com/javiermolinar/hearth/internal/event"
	"github.com/javiermolinar/hearth/internal/log"
	"github.com/javiermolinar/hearth/internal/timeline"
)

// weekReport is one rendered window plus the context printed around it.
type weekReport struct {
	Member string
	Now    time.Time
	View   timeline.View
	Status string // sync warning, empty when the cache is healthy
}

func (a *App) weekCmd() *cobra.Command {
	var (
		member    string
		offset    int
		nowArg    string
		selectID  string
		overflow  bool
		output    string
		noColor   bool
		showWidth int
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print a member's week timeline",
		Long: `Print the seven-day timeline for one family member.

The window starts today (or at --now) and --offset moves it by whole
weeks. --select expands one event by id, --overflow expands the bucket
of events past the visible cap.`,
		Example: `  hearth week
  hearth week --member Bea --offset 1
  hearth week --now 2024-06-10 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}

			now, err := dateutil.ParseRelativeDate(nowArg, a.now())
			if err != nil {
				return fmt.Errorf("invalid --now %q: %w", nowArg, err)
			}
			m, err := a.config.ResolveMember(member)
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}

			state := timeline.State{}.Jump(offset)
			switch {
			case selectID != "":
				state = state.SelectEvent(selectID)
			case overflow:
				state = state.SelectOverflow()
			}

			report, err := buildWeek(cmd.Context(), store, m, state, now, a.config.Timeline.VisibleCap)
			if err != nil {
				return err
			}

			width := showWidth
			if width <= 0 {
				width = termWidth()
			}
			return writeWeek(cmd.OutOrStdout(), output, report, width)
		},
	}

	cmd.Flags().StringVarP(&member, "member", "m", "", "Family member (default from config)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Weeks from the current window (negative for past weeks)")
	cmd.Flags().StringVar(&nowArg, "now", "", "Reference date: today, tomorrow, monday, next-week, YYYY-MM-DD")
	cmd.Flags().StringVar(&selectID, "select", "", "Expand the event with this id")
	cmd.Flags().BoolVar(&overflow, "overflow", false, "Expand the overflow bucket")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json, yaml")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	cmd.Flags().IntVar(&showWidth, "width", 0, "Axis width in columns (default terminal width)")
	cmd.MarkFlagsMutuallyExclusive("select", "overflow")
	return cmd
}

// buildWeek loads the member's cached events for the state's window and
// lays them out. A source failure renders the empty window.
func buildWeek(ctx context.Context, store *db.SQLite, m config.Member, state timeline.State, now time.Time, visibleCap int) (weekReport, error) {
	window := timeline.WindowFor(state.Offset, now)

	loaded, err := event.Load(ctx, store, m.Name, m.Name, window.Start, window.End, now.Location())
	if err != nil {
		if !errors.Is(err, event.ErrEmptySource) {
			return weekReport{}, err
		}
		if err != event.ErrEmptySource {
			log.Warn("showing empty week", "member", m.Name, "reason", err)
		}
	}
	if len(loaded.Dropped) > 0 {
		log.Warn("dropped invalid events", "member", m.Name, "count", len(loaded.Dropped))
	}

	status, err := syncStatus(ctx, store, m.Name)
	if err != nil {
		return weekReport{}, err
	}

	return weekReport{
		Member: m.Name,
		Now:    now,
		View:   state.Build(loaded.Events, now, visibleCap),
		Status: status,
	}, nil
}

// syncStatus describes a member's last sync when it needs attention.
func syncStatus(ctx context.Context, store *db.SQLite, member string) (string, error) {
	summaries, err := store.Members(ctx)
	if err != nil {
		return "", fmt.Errorf("reading sync state: %w", err)
	}
	return db.SyncWarning(summaries, member), nil
}
