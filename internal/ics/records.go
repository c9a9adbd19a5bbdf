package ics

import (
	"time"

	"github.com/javiermolinar/hearth/internal/event"
)

// Records converts occurrences into store records. Ids are
// "<UID>@<instance>" so every instance of a series is distinct and stable
// across syncs.
func Records(occs []Occurrence) []event.Record {
	out := make([]event.Record, 0, len(occs))
	for _, o := range occs {
		r := event.Record{
			ID:     o.UID + "@" + o.Instance,
			Title:  o.Summary,
			Start:  o.Start.Format(time.RFC3339),
			AllDay: o.AllDay,
			Source: o.Source.ID,
		}
		if o.End.After(o.Start) {
			r.End = o.End.Format(time.RFC3339)
		}
		out = append(out, r)
	}
	return out
}
