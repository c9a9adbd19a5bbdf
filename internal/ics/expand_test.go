package ics

import (
	"fmt"
	"testing"
	"time"
)

func utc(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

func juneRange() ExpandConfig {
	return ExpandConfig{
		Location:   time.UTC,
		RangeStart: utc(10, 0, 0),
		RangeEnd:   utc(16, 23, 59),
	}
}

func starts(occs []Occurrence) []string {
	out := make([]string, 0, len(occs))
	for _, o := range occs {
		out = append(out, o.Start.Format("02T15:04"))
	}
	return out
}

func TestExpand_SingleEvents(t *testing.T) {
	events := []ParsedEvent{
		{UID: "in", Summary: "In", Start: utc(12, 9, 0), End: utc(12, 10, 0)},
		{UID: "before", Summary: "Before", Start: utc(8, 9, 0), End: utc(8, 10, 0)},
		{UID: "after", Summary: "After", Start: utc(20, 9, 0), End: utc(20, 10, 0)},
		{UID: "running", Summary: "Running", Start: utc(9, 22, 0), End: utc(10, 2, 0)},
		{UID: "ends-at-start", Summary: "Ends at start", Start: utc(9, 22, 0), End: utc(10, 0, 0)},
	}

	res, err := Expand(events, juneRange())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := fmt.Sprint(starts(res.Occurrences))
	if want := "[09T22:00 12T09:00]"; got != want {
		t.Errorf("starts = %s, want %s", got, want)
	}
	if res.Occurrences[1].UID != "in" || res.Occurrences[1].Instance != "20240612T090000Z" {
		t.Errorf("occurrence = %+v", res.Occurrences[1])
	}
}

func TestExpand_WeeklyWithExdate(t *testing.T) {
	cfg := juneRange()
	cfg.RangeStart = utc(1, 0, 0)
	cfg.RangeEnd = utc(30, 23, 59)

	events := []ParsedEvent{{
		UID:     "piano",
		Summary: "Piano",
		Start:   utc(3, 17, 0),
		End:     utc(3, 17, 45),
		RRule:   "FREQ=WEEKLY;COUNT=5",
		ExDates: []time.Time{utc(17, 17, 0)},
	}}

	res, err := Expand(events, cfg)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := fmt.Sprint(starts(res.Occurrences))
	if want := "[03T17:00 10T17:00 24T17:00]"; got != want {
		t.Errorf("starts = %s, want %s", got, want)
	}
	for _, o := range res.Occurrences {
		if o.End.Sub(o.Start) != 45*time.Minute {
			t.Errorf("%s lasts %v", o.Instance, o.End.Sub(o.Start))
		}
	}
}

func TestExpand_RangeLimitsSeries(t *testing.T) {
	events := []ParsedEvent{{
		UID:   "daily",
		Start: utc(1, 7, 0),
		End:   utc(1, 7, 30),
		RRule: "FREQ=DAILY",
	}}

	res, err := Expand(events, juneRange())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(res.Occurrences) != 7 {
		t.Errorf("occurrences = %d, want 7 (June 10-16)", len(res.Occurrences))
	}
}

func TestExpand_Overrides(t *testing.T) {
	rid := utc(12, 9, 0)
	outOfRange := utc(13, 9, 0)
	events := []ParsedEvent{
		{UID: "standup", Summary: "Standup", Start: utc(10, 9, 0), End: utc(10, 9, 15), RRule: "FREQ=DAILY;COUNT=5"},
		{UID: "standup", Summary: "Standup (late)", Start: utc(12, 11, 0), End: utc(12, 11, 15), RecurrenceID: &rid},
		{UID: "standup", Summary: "Standup (moved away)", Start: utc(25, 9, 0), End: utc(25, 9, 15), RecurrenceID: &outOfRange},
	}

	res, err := Expand(events, juneRange())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := fmt.Sprint(starts(res.Occurrences))
	if want := "[10T09:00 11T09:00 12T11:00 14T09:00]"; got != want {
		t.Fatalf("starts = %s, want %s", got, want)
	}
	moved := res.Occurrences[2]
	if moved.Summary != "Standup (late)" || moved.Instance != "20240612T090000Z" {
		t.Errorf("override = %+v", moved)
	}
}

func TestExpand_AllDaySeries(t *testing.T) {
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:    "trash",
		AllDay: true,
		Start:  start,
		End:    start.AddDate(0, 0, 1),
		RRule:  "FREQ=WEEKLY;BYDAY=MO,TH",
	}}

	res, err := Expand(events, juneRange())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := fmt.Sprint(starts(res.Occurrences))
	if want := "[10T00:00 13T00:00]"; got != want {
		t.Errorf("starts = %s, want %s", got, want)
	}
	for _, o := range res.Occurrences {
		if !o.AllDay || o.End.Sub(o.Start) != 24*time.Hour {
			t.Errorf("%s: allDay=%v length=%v", o.Instance, o.AllDay, o.End.Sub(o.Start))
		}
	}
}

func TestExpand_CapAndBadRule(t *testing.T) {
	cfg := juneRange()
	cfg.MaxPerEvent = 3
	events := []ParsedEvent{
		{UID: "hourly", Start: utc(10, 0, 0), End: utc(10, 0, 0), RRule: "FREQ=HOURLY"},
		{UID: "broken", Start: utc(10, 0, 0), End: utc(10, 1, 0), RRule: "FREQ=SOMETIMES"},
	}

	res, err := Expand(events, cfg)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(res.Occurrences) != 3 {
		t.Errorf("occurrences = %d, want 3", len(res.Occurrences))
	}
	if fmt.Sprint(res.Truncated) != "[hourly]" {
		t.Errorf("truncated = %v", res.Truncated)
	}
	if res.BadRules != 1 {
		t.Errorf("bad rules = %d, want 1", res.BadRules)
	}
}

func TestExpand_InvertedRange(t *testing.T) {
	cfg := juneRange()
	cfg.RangeStart, cfg.RangeEnd = cfg.RangeEnd, cfg.RangeStart
	if _, err := Expand(nil, cfg); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestRecords(t *testing.T) {
	occs := []Occurrence{
		{
			Source:   Source{ID: "school"},
			UID:      "play",
			Instance: "20240613T170000Z",
			Summary:  "School play",
			Start:    utc(13, 17, 0),
			End:      utc(13, 19, 0),
		},
		{
			Source:   Source{ID: "family"},
			UID:      "reminder",
			Instance: "20240614T080000Z",
			Summary:  "Call grandma",
			Start:    utc(14, 8, 0),
			End:      utc(14, 8, 0),
		},
	}

	recs := Records(occs)
	if len(recs) != 2 {
		t.Fatalf("records = %d", len(recs))
	}
	if recs[0].ID != "play@20240613T170000Z" || recs[0].Title != "School play" || recs[0].Source != "school" {
		t.Errorf("record = %+v", recs[0])
	}
	if recs[0].Start != "2024-06-13T17:00:00Z" || recs[0].End != "2024-06-13T19:00:00Z" {
		t.Errorf("record times = %s..%s", recs[0].Start, recs[0].End)
	}
	if recs[1].End != "" {
		t.Errorf("zero-length occurrence should have no end, got %q", recs[1].End)
	}
}
