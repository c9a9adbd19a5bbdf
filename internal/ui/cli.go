// Package ui implements the hearth command line.
package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/hearth/internal/config"
	"github.com/javiermolinar/hearth/internal/db"
	"github.com/javiermolinar/hearth/internal/log"
	"github.com/javiermolinar/hearth/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config   *config.Config
	store    *db.SQLite // opened on first use
	root     *cobra.Command
	debug    bool
	logLevel string
	member   string
	now      func() time.Time
}

// NewApp creates a new CLI application for cfg.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg, now: time.Now}

	a.root = &cobra.Command{
		Use:   "hearth",
		Short: "A week-at-a-glance family calendar",
		Long: `Hearth shows each family member's next seven days on a single timeline.

Calendars are subscribed ICS feeds, synced into a local cache. Run
"hearth sync" to refresh them and "hearth" to open the timeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.configureLogging()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			var opts []tui.ModelOption
			if a.member != "" {
				m, err := a.config.ResolveMember(a.member)
				if err != nil {
					return err
				}
				opts = append(opts, tui.WithMember(m.Name))
			}
			return tui.RunWithDebug(store, a.config, a.debug, opts...)
		},
	}
	a.root.Flags().StringVarP(&a.member, "member", "m", "", "Member to show first")

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (TUI logs to a file)")
	a.root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.syncCmd())
	a.root.AddCommand(a.membersCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hearth %s (commit: %s)\n", Version, Commit)
		},
	}
}

func (a *App) configureLogging() error {
	switch {
	case a.debug:
		log.SetLevel(log.LevelDebug)
	case a.logLevel != "":
		level, err := log.ParseLevel(a.logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
	}
	return nil
}

// openStore opens the event cache on first use.
func (a *App) openStore() (*db.SQLite, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := db.New(a.config.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening event cache: %w", err)
	}
	a.store = store
	return store, nil
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the event cache if it was opened.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
