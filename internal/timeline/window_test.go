package timeline

import (
	"testing"
	"time"
)

func TestWindowFor(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 45, 0, 0, time.UTC) // Monday afternoon

	tests := []struct {
		name      string
		offset    int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "current week starts today",
			offset:    0,
			wantStart: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 6, 16, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:      "next week",
			offset:    1,
			wantStart: time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 6, 23, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:      "previous week",
			offset:    -1,
			wantStart: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 6, 9, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:      "across year boundary",
			offset:    30,
			wantStart: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 1, 12, 23, 59, 59, 999000000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WindowFor(tt.offset, now)
			if !w.Start.Equal(tt.wantStart) {
				t.Errorf("start: got %v, want %v", w.Start, tt.wantStart)
			}
			if !w.End.Equal(tt.wantEnd) {
				t.Errorf("end: got %v, want %v", w.End, tt.wantEnd)
			}
		})
	}
}

func TestWindowFor_StartIsMidnightAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	// DST starts 2024-03-10; walk offsets across it.
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, loc)
	for offset := -2; offset <= 2; offset++ {
		w := WindowFor(offset, now)
		if h, m, s := w.Start.Clock(); h != 0 || m != 0 || s != 0 {
			t.Errorf("offset %d: start %v is not midnight", offset, w.Start)
		}
		lastDay := w.Day(DaysPerWindow - 1)
		if h, m, _ := w.End.Clock(); h != 23 || m != 59 || !lastDay.Before(w.End) {
			t.Errorf("offset %d: end %v is not the last instant of %v", offset, w.End, lastDay)
		}
		if w.End.YearDay()-w.Start.YearDay() != DaysPerWindow-1 {
			t.Errorf("offset %d: window spans %v..%v, want 7 calendar days", offset, w.Start, w.End)
		}
	}
}

func TestWeekWindow_Contains(t *testing.T) {
	w := WindowFor(0, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"start is inclusive", w.Start, true},
		{"end is inclusive", w.End, true},
		{"middle", time.Date(2024, 6, 13, 9, 0, 0, 0, time.UTC), true},
		{"just before start", w.Start.Add(-time.Nanosecond), false},
		{"just after end", w.End.Add(time.Nanosecond), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.t); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestWeekWindow_Day(t *testing.T) {
	w := WindowFor(0, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	want := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	if got := w.Day(2); !got.Equal(want) {
		t.Errorf("Day(2) = %v, want %v", got, want)
	}
}
