package ui

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/hearth/internal/db"
)

func (a *App) membersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "List family members and their cached events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(a.config.Members) == 0 {
				return errNoMembers
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			summaries, err := store.Members(cmd.Context())
			if err != nil {
				return err
			}
			byName := make(map[string]db.MemberSummary, len(summaries))
			for _, s := range summaries {
				byName[s.Name] = s
			}

			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(formatHeader("MEMBER"), formatHeader("CALENDARS"), formatHeader("EVENTS"),
				formatHeader("LAST SYNC"), formatHeader("STATUS"))
			for _, m := range a.config.Members {
				name := m.Name
				if name == a.config.Timeline.DefaultMember {
					name += " (default)"
				}
				s, ok := byName[m.Name]
				lastSync, status := formatMuted("never"), formatMuted("-")
				if ok && !s.SyncedAt.IsZero() {
					lastSync = s.SyncedAt.Local().Format("Jan 2 15:04")
					status = string(s.Status)
					if s.Status != db.SyncOK {
						status = formatWarn(status)
					}
				}
				tbl.AddRow(name, len(m.Calendars), s.Events, lastSync, status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return nil
		},
	}
}
