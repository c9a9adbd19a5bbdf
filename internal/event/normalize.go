package event

import (
	"fmt"
	"strings"
	"time"
)

// prefixSeparators are tried in order after the subject name. The bare
// space comes last so "Alice - Dentist" never degrades to "- Dentist".
var prefixSeparators = []string{" - ", "- ", " — ", " – ", ": ", " "}

// separatorChars is the cutset of a remainder that carries no title.
const separatorChars = " -—–:"

// timestampLayouts are the textual forms collaborators are known to send.
// Layouts without a zone are interpreted in the caller's location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CleanTitle strips emoji and a leading "<subject><sep>" prefix from title,
// then trims surrounding whitespace. The subject match is case-insensitive.
// A title that would become empty, or only separator punctuation, keeps its
// emoji-free form instead.
func CleanTitle(title, subject string) string {
	cleaned := strings.TrimSpace(StripEmoji(title))
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return cleaned
	}

	for _, sep := range prefixSeparators {
		prefix := subject + sep
		if len(cleaned) < len(prefix) || !strings.EqualFold(cleaned[:len(prefix)], prefix) {
			continue
		}
		if rest := strings.TrimSpace(cleaned[len(prefix):]); strings.Trim(rest, separatorChars) != "" {
			return rest
		}
		break
	}
	return cleaned
}

// ParseTimestamp parses a collaborator timestamp. Zone-less values are read
// in loc; the result is always expressed in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Normalize converts a raw record into an Event for the given subject.
// Failures wrap ErrInvalidEvent.
func Normalize(r Record, subject string, loc *time.Location) (Event, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return Event{}, fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}

	start, err := ParseTimestamp(r.Start, loc)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %s: start: %v", ErrInvalidEvent, id, err)
	}

	ev := Event{
		ID:    id,
		Title: CleanTitle(r.Title, subject),
		Start: start,
	}

	if strings.TrimSpace(r.End) != "" {
		end, err := ParseTimestamp(r.End, loc)
		if err != nil {
			return Event{}, fmt.Errorf("%w: %s: end: %v", ErrInvalidEvent, id, err)
		}
		if end.Before(start) {
			return Event{}, fmt.Errorf("%w: %s: end %s before start %s", ErrInvalidEvent, id,
				end.Format(time.RFC3339), start.Format(time.RFC3339))
		}
		ev.End = &end
	}

	return ev, nil
}

// NormalizeAll normalizes every record, dropping the ones that fail.
// Survivors keep their input order. The returned errors describe each
// dropped record; a non-empty error slice never means the batch failed.
func NormalizeAll(records []Record, subject string, loc *time.Location) ([]Event, []error) {
	events := make([]Event, 0, len(records))
	var errs []error
	for _, r := range records {
		ev, err := Normalize(r, subject, loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, ev)
	}
	return events, errs
}
