// Package calsync refreshes each member's cached events from their
// calendar feeds.
package calsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/hearth/internal/config"
	"github.com/javiermolinar/hearth/internal/db"
	"github.com/javiermolinar/hearth/internal/event"
	"github.com/javiermolinar/hearth/internal/ics"
	"github.com/javiermolinar/hearth/internal/log"
)

// Store persists synced records.
type Store interface {
	ReplaceMemberEvents(ctx context.Context, member string, records []event.Record) (int, error)
	RecordSync(ctx context.Context, member string, status db.SyncStatus, syncErr error) error
}

// Fetcher downloads feed bodies.
type Fetcher interface {
	FetchAll(ctx context.Context, sources []ics.Source) ([]ics.FetchResult, []error)
}

// Report summarizes one member's sync.
type Report struct {
	Member    string
	Status    db.SyncStatus
	Sources   int
	Failed    int // sources that could not be fetched or parsed
	Stored    int
	Skipped   int // malformed VEVENTs
	Truncated int // series cut at the per-event cap
	Errors    []error
	Duration  time.Duration
}

// Syncer runs fetch, parse, expand and store for members.
type Syncer struct {
	store    Store
	fetcher  Fetcher
	members  []config.Member
	horizon  int
	backfill int
	loc      *time.Location
	now      func() time.Time
}

// New creates a Syncer for the members in cfg.
func New(cfg *config.Config, store Store, fetcher Fetcher) *Syncer {
	return &Syncer{
		store:    store,
		fetcher:  fetcher,
		members:  cfg.Members,
		horizon:  cfg.Sync.HorizonDays,
		backfill: cfg.Sync.BackfillDays,
		loc:      time.Local,
		now:      time.Now,
	}
}

// SyncAll syncs every configured member in order. The returned error joins
// the per-member failures; reports are returned for all members.
func (s *Syncer) SyncAll(ctx context.Context) ([]Report, error) {
	reports := make([]Report, 0, len(s.members))
	var errs []error
	for _, m := range s.members {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		rep, err := s.SyncMember(ctx, m)
		reports = append(reports, rep)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}

// SyncMember refreshes one member. When every calendar fails, the cached
// events are left untouched and the error wraps
// event.ErrUpstreamUnavailable.
func (s *Syncer) SyncMember(ctx context.Context, m config.Member) (rep Report, err error) {
	started := s.now()
	rep = Report{Member: m.Name, Sources: len(m.Calendars)}
	defer func() { rep.Duration = s.now().Sub(started) }()

	sources := make([]ics.Source, 0, len(m.Calendars))
	for i, cal := range m.Calendars {
		id := cal.ID
		if id == "" {
			id = fmt.Sprintf("calendar-%d", i+1)
		}
		sources = append(sources, ics.Source{ID: id, URL: cal.URL})
	}

	results, fetchErrs := s.fetcher.FetchAll(ctx, sources)
	rep.Errors = append(rep.Errors, fetchErrs...)

	var parsed []ics.ParsedEvent
	usable := 0
	for _, res := range results {
		pr, err := ics.Parse(res.Source, res.Body)
		if err != nil {
			rep.Errors = append(rep.Errors, fmt.Errorf("%s: %w", res.Source.ID, err))
			continue
		}
		usable++
		rep.Skipped += pr.Skipped
		parsed = append(parsed, pr.Events...)
	}
	rep.Failed = len(sources) - usable

	if len(sources) > 0 && usable == 0 {
		rep.Status = db.SyncFailed
		err = fmt.Errorf("%s: %w", m.Name, errors.Join(append([]error{event.ErrUpstreamUnavailable}, rep.Errors...)...))
		s.recordSync(ctx, m.Name, rep.Status, err)
		log.Error("sync failed, keeping cached events", err, "member", m.Name)
		return rep, err
	}

	now := started.In(s.loc)
	exp, err := ics.Expand(parsed, ics.ExpandConfig{
		Location:   s.loc,
		RangeStart: now.AddDate(0, 0, -s.backfill),
		RangeEnd:   now.AddDate(0, 0, s.horizon),
	})
	if err != nil {
		return rep, fmt.Errorf("%s: expanding: %w", m.Name, err)
	}
	rep.Truncated = len(exp.Truncated)
	rep.Skipped += exp.BadRules

	rep.Stored, err = s.store.ReplaceMemberEvents(ctx, m.Name, ics.Records(exp.Occurrences))
	if err != nil {
		return rep, fmt.Errorf("%s: storing events: %w", m.Name, err)
	}

	rep.Status = db.SyncOK
	if rep.Failed > 0 {
		rep.Status = db.SyncPartial
	}
	s.recordSync(ctx, m.Name, rep.Status, errors.Join(rep.Errors...))

	log.Info("member synced", "member", m.Name, "status", rep.Status, "stored", rep.Stored,
		"failed_sources", rep.Failed, "skipped", rep.Skipped)
	return rep, nil
}

func (s *Syncer) recordSync(ctx context.Context, member string, status db.SyncStatus, syncErr error) {
	if err := s.store.RecordSync(ctx, member, status, syncErr); err != nil {
		log.Error("recording sync state", err, "member", member)
	}
}
