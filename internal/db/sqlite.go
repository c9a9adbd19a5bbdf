// Package db provides SQLite storage for synced calendar events.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/hearth/internal/event"
	"github.com/javiermolinar/hearth/internal/log"
)

// storeLayout keeps every stored instant in UTC so text comparison on the
// start_at column orders chronologically.
const storeLayout = "2006-01-02T15:04:05Z"

// SyncStatus is the outcome of a member's last sync.
type SyncStatus string

const (
	SyncOK      SyncStatus = "ok"
	SyncPartial SyncStatus = "partial" // some calendars failed
	SyncFailed  SyncStatus = "failed"  // nothing fetched, previous cache kept
)

// MemberSummary describes one member's cached data.
type MemberSummary struct {
	Name     string
	Events   int
	SyncedAt time.Time // zero if never synced
	Status   SyncStatus
	Error    string
}

// NotSyncedText is the warning for a member without a sync record.
const NotSyncedText = "not synced yet, run: hearth sync"

// Warning describes the last sync when it needs attention, or returns "".
// Multi-line errors are joined onto one line.
func (m MemberSummary) Warning() string {
	switch {
	case m.SyncedAt.IsZero():
		return NotSyncedText
	case m.Status == SyncFailed:
		return fmt.Sprintf("sync failed %s, showing cached events: %s",
			m.SyncedAt.Local().Format("Jan 2 15:04"), oneLine(m.Error))
	case m.Status == SyncPartial:
		return "some calendars failed to sync: " + oneLine(m.Error)
	}
	return ""
}

// SyncWarning returns the Warning for member among summaries.
func SyncWarning(summaries []MemberSummary, member string) string {
	for _, s := range summaries {
		if s.Name == member {
			return s.Warning()
		}
	}
	return NotSyncedText
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", "; ")), " ")
}

// SQLite stores events per member. It implements event.Source.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ event.Source = (*SQLite)(nil)

// New opens (creating if needed) the database at path and runs migrations.
func New(path string) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		// The sync daemon and the TUI may hold the file at the same time.
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// ReplaceMemberEvents atomically swaps member's cached events for records.
// Records whose start cannot be parsed are skipped; the number stored is
// returned.
func (s *SQLite) ReplaceMemberEvents(ctx context.Context, member string, records []event.Record) (int, error) {
	syncedAt := s.now().UTC().Format(storeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE member = ?`, member); err != nil {
		return 0, fmt.Errorf("clearing events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (member, id, title, start_at, end_at, all_day, source, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(member, id) DO UPDATE SET
			title = excluded.title, start_at = excluded.start_at, end_at = excluded.end_at,
			all_day = excluded.all_day, source = excluded.source, synced_at = excluded.synced_at
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	stored := 0
	for _, r := range records {
		start, err := toStored(r.Start)
		if err != nil {
			log.Warn("skipping record", "member", member, "id", r.ID, "reason", err)
			continue
		}
		var end sql.NullString
		if r.End != "" {
			v, err := toStored(r.End)
			if err != nil {
				log.Warn("dropping record end", "member", member, "id", r.ID, "reason", err)
			} else {
				end = sql.NullString{String: v, Valid: true}
			}
		}

		if _, err := stmt.ExecContext(ctx, member, r.ID, r.Title, start, end, r.AllDay, r.Source, syncedAt); err != nil {
			return 0, fmt.Errorf("inserting event %s: %w", r.ID, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return stored, nil
}

// ListRecords returns member's records starting within [start, end],
// ordered by start.
func (s *SQLite) ListRecords(ctx context.Context, member string, start, end time.Time) ([]event.Record, error) {
	query := `
		SELECT id, title, start_at, end_at, all_day, source
		FROM events
		WHERE member = ? AND start_at >= ? AND start_at <= ?
		ORDER BY start_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, member,
		start.UTC().Format(storeLayout), end.UTC().Format(storeLayout))
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []event.Record
	for rows.Next() {
		var (
			r     event.Record
			endAt sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Start, &endAt, &r.AllDay, &r.Source); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		r.End = endAt.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return records, nil
}

// RecordSync stores the outcome of a member's sync.
func (s *SQLite) RecordSync(ctx context.Context, member string, status SyncStatus, syncErr error) error {
	msg := ""
	if syncErr != nil {
		msg = syncErr.Error()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_state (member, synced_at, status, error) VALUES (?, ?, ?, ?)
		ON CONFLICT(member) DO UPDATE SET
			synced_at = excluded.synced_at, status = excluded.status, error = excluded.error
	`, member, s.now().UTC().Format(storeLayout), string(status), msg)
	if err != nil {
		return fmt.Errorf("recording sync: %w", err)
	}
	return nil
}

// Members summarizes every member with cached events or a sync record,
// ordered by name.
func (s *SQLite) Members(ctx context.Context) ([]MemberSummary, error) {
	query := `
		SELECT m.member,
		       (SELECT COUNT(*) FROM events e WHERE e.member = m.member),
		       COALESCE(st.synced_at, ''),
		       COALESCE(st.status, ''),
		       COALESCE(st.error, '')
		FROM (SELECT member FROM events UNION SELECT member FROM sync_state) m
		LEFT JOIN sync_state st ON st.member = m.member
		ORDER BY m.member
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []MemberSummary
	for rows.Next() {
		var (
			m        MemberSummary
			syncedAt string
			status   string
		)
		if err := rows.Scan(&m.Name, &m.Events, &syncedAt, &status, &m.Error); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		m.Status = SyncStatus(status)
		if syncedAt != "" {
			if m.SyncedAt, err = time.Parse(storeLayout, syncedAt); err != nil {
				return nil, fmt.Errorf("parsing synced_at: %w", err)
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// toStored converts a record timestamp into the UTC storage form.
func toStored(ts string) (string, error) {
	t, err := event.ParseTimestamp(ts, time.Local)
	if err != nil {
		return "", errors.Join(event.ErrInvalidEvent, err)
	}
	return t.UTC().Format(storeLayout), nil
}
