package ics

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/javiermolinar/hearth/internal/dateutil"
	"github.com/javiermolinar/hearth/internal/log"
)

const defaultMaxPerEvent = 1000

// instanceLayout keys an occurrence by its original start in UTC.
const instanceLayout = "20060102T150405Z"

// ExpandConfig bounds recurrence expansion.
type ExpandConfig struct {
	// Location occurrences are converted to. Nil means time.Local.
	Location *time.Location

	// RangeStart and RangeEnd are inclusive.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxPerEvent caps the instances generated for one series.
	MaxPerEvent int
}

// Occurrence is one concrete instance of a VEVENT.
type Occurrence struct {
	Source   Source
	UID      string
	Instance string // original start of the instance, UTC
	Summary  string
	Location string
	AllDay   bool
	Start    time.Time
	End      time.Time
}

// ExpandResult is the expanded occurrences, ordered by start.
type ExpandResult struct {
	Occurrences []Occurrence
	Truncated   []string // UIDs that hit MaxPerEvent
	BadRules    int      // series dropped because the RRULE did not parse
}

// Expand turns parsed VEVENTs into occurrences overlapping the range. It
// applies RRULE, EXDATE and RECURRENCE-ID overrides; an override replaces
// the instance it names even when it moves the instance into or out of
// the range.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var res ExpandResult
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return res, errors.New("expand: range end before range start")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxPerEvent <= 0 {
		cfg.MaxPerEvent = defaultMaxPerEvent
	}

	overridden := make(map[string]map[string]bool)
	for _, ev := range events {
		if !ev.IsOverride() {
			continue
		}
		key := seriesKey(ev)
		if overridden[key] == nil {
			overridden[key] = make(map[string]bool)
		}
		overridden[key][instanceKey(*ev.RecurrenceID)] = true

		if overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
			res.Occurrences = append(res.Occurrences, occurrence(ev, *ev.RecurrenceID, ev.Start, ev.End, cfg.Location))
		}
	}

	for _, ev := range events {
		if ev.IsOverride() {
			continue
		}
		if ev.RRule == "" {
			if overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
				res.Occurrences = append(res.Occurrences, occurrence(ev, ev.Start, ev.Start, ev.End, cfg.Location))
			}
			continue
		}

		occs, truncated, err := expandSeries(ev, overridden[seriesKey(ev)], cfg)
		if err != nil {
			log.Warn("dropping series with bad RRULE", "uid", ev.UID, "rrule", ev.RRule, "reason", err)
			res.BadRules++
			continue
		}
		if truncated {
			log.Warn("series truncated", "uid", ev.UID, "cap", cfg.MaxPerEvent)
			res.Truncated = append(res.Truncated, ev.UID)
		}
		res.Occurrences = append(res.Occurrences, occs...)
	}

	slices.SortStableFunc(res.Occurrences, func(a, b Occurrence) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return strings.Compare(a.UID, b.UID)
	})
	return res, nil
}

func expandSeries(ev ParsedEvent, skip map[string]bool, cfg ExpandConfig) ([]Occurrence, bool, error) {
	rule, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		return nil, false, fmt.Errorf("parsing rrule: %w", err)
	}
	rule.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen the lower bound by the event length so instances that started
	// before the range but are still running are included.
	length := ev.End.Sub(ev.Start)
	from := cfg.RangeStart.Add(-length).In(ev.Start.Location())
	to := cfg.RangeEnd.In(ev.Start.Location())
	starts := set.Between(from, to, true)

	truncated := false
	if len(starts) > cfg.MaxPerEvent {
		starts = starts[:cfg.MaxPerEvent]
		truncated = true
	}

	days := dateutil.DayDiff(ev.End, ev.Start)
	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		if skip[instanceKey(start)] {
			continue
		}
		var end time.Time
		if ev.AllDay {
			start = dateutil.TruncateToDay(start)
			end = dateutil.AddDays(start, max(days, 1))
		} else {
			end = start.Add(length)
		}
		if !overlaps(start, end, cfg.RangeStart, cfg.RangeEnd) {
			continue
		}
		out = append(out, occurrence(ev, start, start, end, cfg.Location))
	}
	return out, truncated, nil
}

func occurrence(ev ParsedEvent, original, start, end time.Time, loc *time.Location) Occurrence {
	return Occurrence{
		Source:   ev.Source,
		UID:      ev.UID,
		Instance: instanceKey(original),
		Summary:  ev.Summary,
		Location: ev.Location,
		AllDay:   ev.AllDay,
		Start:    start.In(loc),
		End:      end.In(loc),
	}
}

func seriesKey(ev ParsedEvent) string {
	return ev.Source.ID + "\x00" + ev.UID
}

func instanceKey(t time.Time) string {
	return t.UTC().Format(instanceLayout)
}

// overlaps treats end as exclusive; a zero-length event is the instant it
// starts at.
func overlaps(start, end, rangeStart, rangeEnd time.Time) bool {
	if start.After(rangeEnd) {
		return false
	}
	if !end.After(start) {
		return !start.Before(rangeStart)
	}
	return end.After(rangeStart)
}
