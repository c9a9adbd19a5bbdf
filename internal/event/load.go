package event

import (
	"context"
	"fmt"
	"time"
)

// Loaded is the outcome of pulling one member's events from a Source.
type Loaded struct {
	Events  []Event
	Dropped []error // ErrInvalidEvent per record that failed normalization
}

// Load lists member's records in [start, end] and normalizes them, using
// subject for title cleanup.
//
// A source failure or an empty result is reported as ErrEmptySource so
// callers can render the empty state. When the source failed, its error is
// wrapped as well, which keeps ErrUpstreamUnavailable detectable.
func Load(ctx context.Context, src Source, member, subject string, start, end time.Time, loc *time.Location) (Loaded, error) {
	records, err := src.ListRecords(ctx, member, start, end)
	if err != nil {
		return Loaded{}, fmt.Errorf("%w: %w", ErrEmptySource, err)
	}
	if len(records) == 0 {
		return Loaded{}, ErrEmptySource
	}

	events, dropped := NormalizeAll(records, subject, loc)
	out := Loaded{Events: events, Dropped: dropped}
	if len(events) == 0 {
		return out, ErrEmptySource
	}
	return out, nil
}
