package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/hearth/internal/calsync"
	"github.com/javiermolinar/hearth/internal/config"
	"github.com/javiermolinar/hearth/internal/db"
	"github.com/javiermolinar/hearth/internal/event"
	"github.com/javiermolinar/hearth/internal/timeline"
)

type fakeStore struct {
	records   []event.Record
	listErr   error
	summaries []db.MemberSummary
	sumErr    error
}

func (f fakeStore) ListRecords(ctx context.Context, member string, start, end time.Time) ([]event.Record, error) {
	return f.records, f.listErr
}

func (f fakeStore) Members(ctx context.Context) ([]db.MemberSummary, error) {
	return f.summaries, f.sumErr
}

type fakeSyncer struct {
	rep calsync.Report
	err error
}

func (f fakeSyncer) SyncMember(ctx context.Context, m config.Member) (calsync.Report, error) {
	return f.rep, f.err
}

var (
	refNow = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	window = timeline.WindowFor(0, refNow)
)

func TestLoadWeek(t *testing.T) {
	store := fakeStore{
		records: []event.Record{
			{ID: "swim", Title: "Swim", Start: "2024-06-11T17:00:00Z"},
			{ID: "bad", Title: "Broken", Start: "not a time"},
		},
		summaries: []db.MemberSummary{{Name: "alice", SyncedAt: refNow, Status: db.SyncOK}},
	}

	msg := LoadWeek(store, "alice", 0, window, time.UTC)()
	loaded, ok := msg.(WeekLoadedMsg)
	if !ok {
		t.Fatalf("msg = %T, want WeekLoadedMsg", msg)
	}
	if loaded.Member != "alice" || loaded.Offset != 0 {
		t.Errorf("identity = %q/%d", loaded.Member, loaded.Offset)
	}
	if len(loaded.Events) != 1 || loaded.Events[0].ID != "swim" {
		t.Errorf("events = %+v", loaded.Events)
	}
	if loaded.Dropped != 1 {
		t.Errorf("dropped = %d, want 1", loaded.Dropped)
	}
	if loaded.SyncStatus != "" {
		t.Errorf("sync status = %q, want empty", loaded.SyncStatus)
	}
}

func TestLoadWeek_EmptyIsNotAnError(t *testing.T) {
	tests := []struct {
		name  string
		store fakeStore
	}{
		{name: "no records", store: fakeStore{}},
		{name: "source failure", store: fakeStore{listErr: event.ErrUpstreamUnavailable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := LoadWeek(tt.store, "bea", 2, window, time.UTC)()
			loaded, ok := msg.(WeekLoadedMsg)
			if !ok {
				t.Fatalf("msg = %T, want WeekLoadedMsg", msg)
			}
			if len(loaded.Events) != 0 {
				t.Errorf("events = %d, want 0", len(loaded.Events))
			}
			if loaded.SyncStatus != db.NotSyncedText {
				t.Errorf("sync status = %q, want %q", loaded.SyncStatus, db.NotSyncedText)
			}
		})
	}
}

func TestLoadWeek_SummaryError(t *testing.T) {
	boom := errors.New("disk gone")
	msg := LoadWeek(fakeStore{sumErr: boom}, "alice", 0, window, time.UTC)()
	errMsg, ok := msg.(ErrMsg)
	if !ok {
		t.Fatalf("msg = %T, want ErrMsg", msg)
	}
	if !errors.Is(errMsg.Err, boom) {
		t.Errorf("err = %v, want wrapping %v", errMsg.Err, boom)
	}
}

func TestSyncMember(t *testing.T) {
	boom := errors.New("offline")
	msg := SyncMember(fakeSyncer{rep: calsync.Report{Member: "alice"}, err: boom}, config.Member{Name: "alice"})()
	synced, ok := msg.(SyncedMsg)
	if !ok {
		t.Fatalf("msg = %T, want SyncedMsg", msg)
	}
	if synced.Report.Member != "alice" || !errors.Is(synced.Err, boom) {
		t.Errorf("synced = %+v", synced)
	}
}

func TestCopyText(t *testing.T) {
	var got string
	msg := CopyText(func(s string) error { got = s; return nil }, "Swim")()
	if _, ok := msg.(StatusMsgCmd); !ok {
		t.Fatalf("msg = %T, want StatusMsgCmd", msg)
	}
	if got != "Swim" {
		t.Errorf("clipboard = %q, want Swim", got)
	}

	msg = CopyText(func(string) error { return errors.New("no clipboard") }, "Swim")()
	if _, ok := msg.(ErrMsg); !ok {
		t.Fatalf("msg = %T, want ErrMsg", msg)
	}
}
