package ics

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/javiermolinar/hearth/internal/log"
)

// ErrEmptyBody is returned when a feed body has no content.
var ErrEmptyBody = errors.New("empty ICS body")

// ParsedEvent is one VEVENT before recurrence expansion.
type ParsedEvent struct {
	Source Source

	UID      string
	Summary  string
	Location string

	Start  time.Time
	End    time.Time
	AllDay bool

	RRule        string
	ExDates      []time.Time
	RecurrenceID *time.Time // set on overrides of a single recurring instance
}

// IsOverride reports whether the VEVENT replaces one instance of a series.
func (p ParsedEvent) IsOverride() bool {
	return p.RecurrenceID != nil
}

// ParseResult holds the usable VEVENTs of a feed.
type ParseResult struct {
	Events  []ParsedEvent
	Skipped int // VEVENTs without a usable DTSTART
}

// Parse reads every VEVENT in body. Malformed VEVENTs are skipped and
// counted; only an unreadable calendar fails the whole feed.
func Parse(src Source, body []byte) (ParseResult, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return ParseResult{}, ErrEmptyBody
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return ParseResult{}, fmt.Errorf("parsing calendar %s: %w", src.ID, err)
	}

	var res ParseResult
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(src, ve)
		if err != nil {
			log.Debug("skipping vevent", "id", src.ID, "reason", err)
			res.Skipped++
			continue
		}
		res.Events = append(res.Events, ev)
	}

	log.Debug("ics parsed", "id", src.ID, "events", len(res.Events), "skipped", res.Skipped)
	return res, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (ParsedEvent, error) {
	out := ParsedEvent{
		Source:   src,
		Summary:  propValue(ve, ical.ComponentPropertySummary),
		Location: propValue(ve, ical.ComponentPropertyLocation),
		RRule:    propValue(ve, ical.ComponentPropertyRrule),
	}

	dtstart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtstart == nil {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = isDateValue(dtstart)

	var err error
	if out.AllDay {
		out.Start, err = ve.GetAllDayStartAt()
	} else {
		out.Start, err = ve.GetStartAt()
	}
	if err != nil {
		return out, fmt.Errorf("DTSTART: %w", err)
	}

	out.End, err = parseEnd(ve, out.Start, out.AllDay)
	if err != nil {
		return out, err
	}

	out.UID = propValue(ve, ical.ComponentPropertyUniqueId)
	if out.UID == "" {
		// Name-based so the same feed yields the same id on every sync.
		seed := src.URL + "\x00" + dtstart.Value + "\x00" + out.Summary
		out.UID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String()
	}

	loc := out.Start.Location()
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t, err := parseTimeValue(part, p.ICalParameters, loc)
			if err != nil {
				log.Debug("ignoring EXDATE", "uid", out.UID, "value", part, "reason", err)
				continue
			}
			out.ExDates = append(out.ExDates, t)
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRecurrenceId); p != nil && p.Value != "" {
		t, err := parseTimeValue(p.Value, p.ICalParameters, loc)
		if err != nil {
			return out, fmt.Errorf("RECURRENCE-ID: %w", err)
		}
		out.RecurrenceID = &t
	}

	return out, nil
}

// parseEnd resolves DTEND, then DURATION, then the RFC 5545 defaults: one
// day for all-day events, zero length otherwise.
func parseEnd(ve *ical.VEvent, start time.Time, allDay bool) (time.Time, error) {
	if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
		var end time.Time
		var err error
		if allDay {
			end, err = ve.GetAllDayEndAt()
		} else {
			end, err = ve.GetEndAt()
		}
		if err != nil {
			return time.Time{}, fmt.Errorf("DTEND: %w", err)
		}
		if end.Before(start) {
			return time.Time{}, errors.New("DTEND before DTSTART")
		}
		return end, nil
	}

	if v := propValue(ve, ical.ComponentPropertyDuration); v != "" {
		d, days, err := parseDuration(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("DURATION: %w", err)
		}
		end := start.AddDate(0, 0, days).Add(d)
		if end.Before(start) {
			return time.Time{}, errors.New("negative DURATION")
		}
		return end, nil
	}

	if allDay {
		return start.AddDate(0, 0, 1), nil
	}
	return start, nil
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseTimeValue parses an EXDATE or RECURRENCE-ID value. UTC values keep
// UTC, a TZID parameter wins next, and floating values use fallback.
func parseTimeValue(v string, params map[string][]string, fallback *time.Location) (time.Time, error) {
	loc := fallback
	if tz, ok := params["TZID"]; ok && len(tz) > 0 {
		l, err := time.LoadLocation(tz[0])
		if err != nil {
			return time.Time{}, err
		}
		loc = l
	}

	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

var durationRe = regexp.MustCompile(`^([+-])?P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseDuration parses an RFC 5545 DURATION. Days and weeks are returned
// separately from the clock part so callers can add them as calendar days.
func parseDuration(v string) (time.Duration, int, error) {
	m := durationRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(v)))
	if m == nil || v == "P" || strings.HasSuffix(v, "T") {
		return 0, 0, fmt.Errorf("invalid duration %q", v)
	}
	num := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}

	days := num(m[2])*7 + num(m[3])
	d := time.Duration(num(m[4]))*time.Hour +
		time.Duration(num(m[5]))*time.Minute +
		time.Duration(num(m[6]))*time.Second

	if m[1] == "-" {
		return -d, -days, nil
	}
	return d, days, nil
}
