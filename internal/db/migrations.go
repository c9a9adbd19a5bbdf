package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS events (
			member    TEXT NOT NULL,
			id        TEXT NOT NULL,
			title     TEXT NOT NULL DEFAULT '',
			start_at  TEXT NOT NULL,
			end_at    TEXT,
			all_day   INTEGER NOT NULL DEFAULT 0,
			source    TEXT NOT NULL DEFAULT '',
			synced_at TEXT NOT NULL,
			PRIMARY KEY (member, id)
		);

		CREATE INDEX IF NOT EXISTS idx_events_member_start ON events(member, start_at);

		CREATE TABLE IF NOT EXISTS sync_state (
			member    TEXT PRIMARY KEY,
			synced_at TEXT NOT NULL,
			status    TEXT NOT NULL CHECK(status IN ('ok', 'partial', 'failed')),
			error     TEXT NOT NULL DEFAULT ''
		);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating events tables: %w", err)
	}

	return nil
}
