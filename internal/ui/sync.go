package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/hearth/internal/calsync"
	"github.com/javiermolinar/hearth/internal/config"
	"github.com/javiermolinar/hearth/internal/db"
	"github.com/javiermolinar/hearth/internal/ics"
)

// errNoMembers is returned when a command needs at least one member.
var errNoMembers = errors.New("no members configured; add [[members]] to " + config.DefaultConfigPath())

func (a *App) syncCmd() *cobra.Command {
	var (
		member string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh cached events from calendar feeds",
		Long: `Fetch every configured calendar, expand recurring events and replace
each member's cached events.

A member whose calendars all fail keeps the previously cached events.
With --watch, hearth keeps running and syncs on the [sync] schedule.`,
		Example: `  hearth sync
  hearth sync --member Bea
  hearth sync --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(a.config.Members) == 0 {
				return errNoMembers
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			syncer := calsync.New(a.config, store, ics.NewFetcher(a.config.Sync.CacheDir, nil))

			ctx := cmd.Context()
			if watch {
				sched, err := calsync.NewScheduler(syncer, a.config.Sync.Schedule)
				if err != nil {
					return err
				}
				watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				fmt.Fprintf(cmd.OutOrStdout(), "Syncing on schedule %q, press Ctrl+C to stop\n", a.config.Sync.Schedule)
				return sched.Run(watchCtx)
			}

			reports, err := runSync(ctx, syncer, a.config, member)
			printReports(cmd.OutOrStdout(), reports)
			return err
		},
	}

	cmd.Flags().StringVarP(&member, "member", "m", "", "Sync only this member")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep syncing on the configured schedule")
	cmd.MarkFlagsMutuallyExclusive("member", "watch")
	return cmd
}

func runSync(ctx context.Context, syncer *calsync.Syncer, cfg *config.Config, member string) ([]calsync.Report, error) {
	if member == "" {
		return syncer.SyncAll(ctx)
	}
	m, err := cfg.ResolveMember(member)
	if err != nil {
		return nil, err
	}
	rep, err := syncer.SyncMember(ctx, m)
	return []calsync.Report{rep}, err
}

func printReports(w io.Writer, reports []calsync.Report) {
	if len(reports) == 0 {
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(formatHeader("MEMBER"), formatHeader("STATUS"), formatHeader("EVENTS"),
		formatHeader("CALENDARS"), formatHeader("SKIPPED"), formatHeader("TOOK"))
	for _, r := range reports {
		status := string(r.Status)
		if r.Status != db.SyncOK {
			status = formatWarn(status)
		}
		tbl.AddRow(
			r.Member,
			status,
			r.Stored,
			fmt.Sprintf("%d/%d", r.Sources-r.Failed, r.Sources),
			r.Skipped,
			formatMuted(r.Duration.Round(time.Millisecond).String()),
		)
	}
	fmt.Fprintln(w, tbl)

	for _, r := range reports {
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  %s %s\n", formatWarn(r.Member+":"), err)
		}
	}
}
