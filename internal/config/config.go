// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// ErrUnknownMember is returned when a member name is not configured.
var ErrUnknownMember = errors.New("unknown member")

// Config holds the application configuration.
type Config struct {
	Timeline TimelineConfig `toml:"timeline"`
	Members  []Member       `toml:"members"`
	Sync     SyncConfig     `toml:"sync"`
	Storage  StorageConfig  `toml:"storage"`
	UI       UIConfig       `toml:"ui"`
}

// TimelineConfig holds week view settings.
type TimelineConfig struct {
	VisibleCap    int    `toml:"visible_cap"`    // events drawn before the overflow bucket
	DefaultMember string `toml:"default_member"` // empty means the first member
}

// Member is one household member whose calendars are shown together.
type Member struct {
	Name      string     `toml:"name"`
	Color     string     `toml:"color,omitempty"` // hex, e.g. "#f38ba8"
	Calendars []Calendar `toml:"calendars"`
}

// Calendar is a subscribed ICS feed.
type Calendar struct {
	ID  string `toml:"id"`
	URL string `toml:"url"`
}

// SyncConfig holds calendar refresh settings.
type SyncConfig struct {
	Schedule     string `toml:"schedule"`      // cron expression
	HorizonDays  int    `toml:"horizon_days"`  // how far ahead recurrences are expanded
	BackfillDays int    `toml:"backfill_days"` // how far back
	CacheDir     string `toml:"cache_dir"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Timeline: TimelineConfig{
			VisibleCap: 6,
		},
		Sync: SyncConfig{
			Schedule:     "*/15 * * * *",
			HorizonDays:  28,
			BackfillDays: 14,
			CacheDir:     defaultCacheDir(),
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme: "frappe",
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hearth.db"
	}
	return filepath.Join(home, ".local", "share", "hearth", "hearth.db")
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "hearth")
	}
	return filepath.Join(dir, "hearth", "ics")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "hearth", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Sync.CacheDir = expandPath(cfg.Sync.CacheDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies HEARTH_* environment variables on top of the
// file config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HEARTH_DEFAULT_MEMBER"); v != "" {
		cfg.Timeline.DefaultMember = v
	}
	if err := envInt("HEARTH_VISIBLE_CAP", &cfg.Timeline.VisibleCap); err != nil {
		return err
	}

	if v := os.Getenv("HEARTH_SYNC_SCHEDULE"); v != "" {
		cfg.Sync.Schedule = v
	}
	if err := envInt("HEARTH_HORIZON_DAYS", &cfg.Sync.HorizonDays); err != nil {
		return err
	}
	if err := envInt("HEARTH_BACKFILL_DAYS", &cfg.Sync.BackfillDays); err != nil {
		return err
	}
	if v := os.Getenv("HEARTH_CACHE_DIR"); v != "" {
		cfg.Sync.CacheDir = v
	}

	if v := os.Getenv("HEARTH_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("HEARTH_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	*dst = n
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a sync schedule. It accepts standard five-field
// cron, an optional leading seconds field, and descriptors like "@hourly".
func ParseSchedule(spec string) (cron.Schedule, error) {
	return cronParser.Parse(spec)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeline.VisibleCap < 1 {
		return fmt.Errorf("visible_cap must be at least 1, got %d", c.Timeline.VisibleCap)
	}

	seen := make(map[string]bool, len(c.Members))
	for i, m := range c.Members {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return fmt.Errorf("member %d has no name", i+1)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("duplicate member: %s", name)
		}
		seen[key] = true
		for j, cal := range m.Calendars {
			if strings.TrimSpace(cal.URL) == "" {
				return fmt.Errorf("member %s: calendar %d has no url", name, j+1)
			}
		}
	}
	if c.Timeline.DefaultMember != "" && len(c.Members) > 0 {
		if _, ok := c.Member(c.Timeline.DefaultMember); !ok {
			return fmt.Errorf("default_member %q: %w", c.Timeline.DefaultMember, ErrUnknownMember)
		}
	}

	if _, err := ParseSchedule(c.Sync.Schedule); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", c.Sync.Schedule, err)
	}
	if c.Sync.HorizonDays < 1 {
		return errors.New("horizon_days must be at least 1")
	}
	if c.Sync.BackfillDays < 0 {
		return errors.New("backfill_days must not be negative")
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	return nil
}

// Member looks up a member by case-insensitive name.
func (c *Config) Member(name string) (Member, bool) {
	for _, m := range c.Members {
		if strings.EqualFold(strings.TrimSpace(m.Name), strings.TrimSpace(name)) {
			return m, true
		}
	}
	return Member{}, false
}

// MemberNames returns the configured member names in file order.
func (c *Config) MemberNames() []string {
	names := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		names = append(names, m.Name)
	}
	return names
}

// ResolveMember picks the member to show: name if given, otherwise
// default_member, otherwise the first configured member.
func (c *Config) ResolveMember(name string) (Member, error) {
	if name == "" {
		name = c.Timeline.DefaultMember
	}
	if name == "" {
		if len(c.Members) == 0 {
			return Member{}, fmt.Errorf("no members configured: %w", ErrUnknownMember)
		}
		return c.Members[0], nil
	}
	m, ok := c.Member(name)
	if !ok {
		return Member{}, fmt.Errorf("%s: %w", name, ErrUnknownMember)
	}
	return m, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
