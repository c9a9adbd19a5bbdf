package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/hearth/internal/config"
	"github.com/javiermolinar/hearth/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing. Members and
their calendars are edited in the file itself.

Example:
  hearth config
  hearth config --show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if show {
				printConfig(cmd.OutOrStdout(), config.DefaultConfigPath(), a.config)
				return nil
			}
			return runConfigInteractive(cmd.OutOrStdout(), os.Stdin)
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "Print the configuration and exit")
	return cmd
}

func runConfigInteractive(w io.Writer, in io.Reader) error {
	configPath := config.DefaultConfigPath()

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(w, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(w, "Created %s\n\n", configPath)
	}

	printConfig(w, configPath, cfg)

	reader := bufio.NewReader(in)
	if !promptYesNo(w, reader, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Timeline.VisibleCap = promptInt(w, reader, "Visible events per week", cfg.Timeline.VisibleCap)
	cfg.Timeline.DefaultMember = promptValue(w, reader, "Default member", cfg.Timeline.DefaultMember)
	cfg.Sync.Schedule = promptValue(w, reader, "Sync schedule (cron)", cfg.Sync.Schedule)
	cfg.Sync.HorizonDays = promptInt(w, reader, "Days to sync ahead", cfg.Sync.HorizonDays)
	cfg.Sync.BackfillDays = promptInt(w, reader, "Days to keep behind", cfg.Sync.BackfillDays)
	cfg.Sync.CacheDir = promptValue(w, reader, "Feed cache directory", cfg.Sync.CacheDir)
	cfg.Storage.DBPath = promptValue(w, reader, "Database path", cfg.Storage.DBPath)
	cfg.UI.Theme = promptTheme(w, reader, cfg.UI.Theme)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(w, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, path string, cfg *config.Config) {
	fmt.Fprintf(w, "Config file: %s\n\n", path)
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[timeline]")
	fmt.Fprintf(w, "  visible_cap    = %d\n", cfg.Timeline.VisibleCap)
	fmt.Fprintf(w, "  default_member = %s\n", cfg.Timeline.DefaultMember)
	for _, m := range cfg.Members {
		fmt.Fprintln(w, "\n[[members]]")
		fmt.Fprintf(w, "  name           = %s\n", m.Name)
		if m.Color != "" {
			fmt.Fprintf(w, "  color          = %s\n", m.Color)
		}
		for _, c := range m.Calendars {
			fmt.Fprintf(w, "  calendar       = %s %s\n", c.ID, redactFeed(c.URL))
		}
	}
	fmt.Fprintln(w, "\n[sync]")
	fmt.Fprintf(w, "  schedule       = %s\n", cfg.Sync.Schedule)
	fmt.Fprintf(w, "  horizon_days   = %d\n", cfg.Sync.HorizonDays)
	fmt.Fprintf(w, "  backfill_days  = %d\n", cfg.Sync.BackfillDays)
	fmt.Fprintf(w, "  cache_dir      = %s\n", cfg.Sync.CacheDir)
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path        = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme          = %s\n", cfg.UI.Theme)
}

// redactFeed hides everything after the host; private feed URLs embed
// their access token in the path.
func redactFeed(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return "(hidden)"
	}
	host, _, _ := strings.Cut(rest, "/")
	return scheme + "://" + host + "/…"
}

func promptYesNo(w io.Writer, reader *bufio.Reader, question string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(w io.Writer, reader *bufio.Reader, label, current string) string {
	if current == "" {
		fmt.Fprintf(w, "  %s: ", label)
	} else {
		fmt.Fprintf(w, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(w io.Writer, reader *bufio.Reader, label string, current int) int {
	for {
		value := promptValue(w, reader, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		fmt.Fprintf(w, "  %q is not a number\n", value)
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}

func promptTheme(w io.Writer, reader *bufio.Reader, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(w, reader, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(w, "  Invalid theme %q. Available: %s\n", value, options)
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}
