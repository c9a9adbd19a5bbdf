package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/hearth/internal/event"
	"github.com/javiermolinar/hearth/internal/timeline"
)

var refNow = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func sampleEvents() []event.Event {
	return []event.Event{
		{ID: "swim", Title: "Swim lesson", Start: at(11, 17, 0), End: ptr(at(11, 18, 0))},
		{ID: "dentist", Title: "Dentist", Start: at(12, 9, 0)},
		{ID: "camp", Title: "Camp", Start: at(14, 0, 0), End: ptr(at(15, 0, 0))},
	}
}

func manyEvents(n int) []event.Event {
	var out []event.Event
	for i := range n {
		out = append(out, event.Event{
			ID:    fmt.Sprintf("e%d", i),
			Title: fmt.Sprintf("Event %d", i),
			Start: at(10+i%7, 9+i, 0),
		})
	}
	return out
}

func TestRenderAxis(t *testing.T) {
	v := timeline.State{}.Build(sampleEvents(), refNow, timeline.DefaultVisibleCap)
	axis, labels := renderAxis(v, 29)

	if len([]rune(axis)) != 29 {
		t.Fatalf("axis width = %d, want 29", len([]rune(axis)))
	}
	for _, col := range []int{0, 4, 8, 12, 20, 24} {
		if axis[col] != byte(glyphTick) {
			t.Errorf("expected tick at column %d in %q", col, axis)
		}
	}
	// Tuesday 17:00 is 41h of 168h into the window.
	if axis[7] != byte(glyphNext) {
		t.Errorf("expected next marker at column 7 in %q", axis)
	}
	if !strings.Contains(axis, string(glyphEvent)) {
		t.Errorf("expected event markers in %q", axis)
	}
	if !strings.HasPrefix(labels, "Mo  Tu  We") {
		t.Errorf("labels = %q", labels)
	}
}

func TestRenderAxis_SelectionAndOverflow(t *testing.T) {
	events := manyEvents(8)

	tests := []struct {
		name    string
		state   timeline.State
		lastCol rune
	}{
		{"overflow marker", timeline.State{}, glyphOverflow},
		{"overflow selected", timeline.State{}.SelectOverflow(), glyphSelected},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := tc.state.Build(events, refNow, 6)
			axis, _ := renderAxis(v, 50)
			if got := []rune(axis)[49]; got != tc.lastCol {
				t.Errorf("last column = %q, want %q (axis %q)", got, tc.lastCol, axis)
			}
		})
	}

	v := timeline.State{}.SelectEvent("dentist").Build(sampleEvents(), refNow, 6)
	axis, _ := renderAxis(v, 50)
	if !strings.ContainsRune(axis, glyphSelected) {
		t.Errorf("expected selected marker in %q", axis)
	}
}

func TestRenderAxis_MinimumWidth(t *testing.T) {
	v := timeline.State{}.Build(nil, refNow, 6)
	axis, _ := renderAxis(v, 5)
	if len(axis) != minAxisWidth {
		t.Errorf("axis width = %d, want %d", len(axis), minAxisWidth)
	}
}

func TestWriteWeek_Text(t *testing.T) {
	DisableColor()
	report := weekReport{
		Member: "Alice",
		Now:    refNow,
		View:   timeline.State{}.Build(sampleEvents(), refNow, 6),
		Status: "not synced yet, run: hearth sync",
	}

	var buf bytes.Buffer
	if err := writeWeek(&buf, "text", report, 60); err != nil {
		t.Fatalf("writeWeek: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Alice · This week (Jun 10–Jun 16)",
		"Swim lesson",
		"17:00-18:00",
		"Tomorrow",
		"all day",
		"Next: Swim lesson · Tuesday 11 Jun · Tomorrow",
		"! not synced yet",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "more this week") {
		t.Errorf("unexpected overflow line:\n%s", out)
	}
}

func TestWriteWeek_TextOverflowAndEmpty(t *testing.T) {
	DisableColor()

	var buf bytes.Buffer
	report := weekReport{Member: "Bea", Now: refNow, View: timeline.State{}.Build(manyEvents(8), refNow, 6)}
	if err := writeWeek(&buf, "text", report, 80); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "+ 2 more this week (--overflow to expand)") {
		t.Errorf("missing overflow line:\n%s", buf.String())
	}

	buf.Reset()
	report.View = timeline.State{}.Build(nil, refNow, 6)
	if err := writeWeek(&buf, "", report, 80); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), timeline.NoEventsText) {
		t.Errorf("missing empty text:\n%s", buf.String())
	}
}

func TestWriteWeek_JSON(t *testing.T) {
	report := weekReport{
		Member: "Alice",
		Now:    refNow,
		View:   timeline.State{}.SelectOverflow().Build(manyEvents(8), refNow, 6),
	}

	var buf bytes.Buffer
	if err := writeWeek(&buf, "json", report, 80); err != nil {
		t.Fatalf("writeWeek: %v", err)
	}

	var got weekOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if got.Member != "Alice" || got.Label != "This week" || got.Start != "2024-06-10T00:00:00Z" {
		t.Errorf("header = %+v", got)
	}
	if len(got.Events) != 6 || got.Overflow == nil || got.Overflow.Count != 2 || len(got.Overflow.Events) != 2 {
		t.Fatalf("events = %d, overflow = %+v", len(got.Events), got.Overflow)
	}
	if got.Overflow.Position != 1 {
		t.Errorf("overflow position = %v, want 1", got.Overflow.Position)
	}
	if got.Selection != "overflow" || !strings.HasPrefix(got.Details, timeline.OverflowPrefix) {
		t.Errorf("selection %q details %q", got.Selection, got.Details)
	}
	for i := 1; i < len(got.Events); i++ {
		if got.Events[i].Position < got.Events[i-1].Position {
			t.Errorf("positions not monotonic: %v then %v", got.Events[i-1].Position, got.Events[i].Position)
		}
	}
}

func TestWriteWeek_YAML(t *testing.T) {
	report := weekReport{Member: "Alice", Now: refNow, View: timeline.State{}.Build(sampleEvents(), refNow, 6)}

	var buf bytes.Buffer
	if err := writeWeek(&buf, "yaml", report, 80); err != nil {
		t.Fatalf("writeWeek: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"member: Alice", "next_event: swim", "- id: swim", "selection: none"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml missing %q:\n%s", want, out)
		}
	}
}

func TestWriteWeek_UnknownFormat(t *testing.T) {
	if err := writeWeek(&bytes.Buffer{}, "xml", weekReport{Now: refNow}, 80); err == nil {
		t.Error("expected error for unknown format")
	}
}
