// Package event defines the canonical calendar event consumed by the
// timeline engine and the raw record shape calendar collaborators hand over.
package event

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy shared by the engine and its collaborators.
var (
	// ErrInvalidEvent marks a single record that cannot be normalized.
	// The record is dropped; the rest of the collection is still processed.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrEmptySource means the collaborator produced no events at all.
	// Callers render the empty timeline rather than an error banner.
	ErrEmptySource = errors.New("no events available")

	// ErrUpstreamUnavailable means the collaborator could not reach or
	// authenticate against its calendar backend.
	ErrUpstreamUnavailable = errors.New("calendar unavailable")
)

// Event is a normalized, dated calendar entry.
type Event struct {
	ID    string
	Title string
	Start time.Time
	End   *time.Time // optional; never before Start
}

// HasEnd reports whether the event carries an end timestamp.
func (e Event) HasEnd() bool {
	return e.End != nil
}

// Duration returns End - Start, or zero when the event has no end.
func (e Event) Duration() time.Duration {
	if e.End == nil {
		return 0
	}
	return e.End.Sub(e.Start)
}

// Record is an event as delivered by a calendar collaborator, before
// normalization. Timestamps are kept as text so that malformed values
// surface as ErrInvalidEvent at the engine boundary instead of inside the
// collaborator.
type Record struct {
	ID     string
	Title  string
	Start  string
	End    string // optional
	AllDay bool
	Source string // collaborator-specific origin, e.g. the calendar id
}

// Source lists raw records for one family member.
type Source interface {
	// ListRecords returns records whose start falls within [start, end].
	ListRecords(ctx context.Context, member string, start, end time.Time) ([]Record, error)
}
