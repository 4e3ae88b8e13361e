package ics

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "dayplanner/internal/log"
)

// textUnescaper reverses RFC 5545 TEXT escaping.
var textUnescaper = strings.NewReplacer(`\\`, `\`, `\,`, ",", `\;`, ";", `\n`, "\n", `\N`, "\n")

// ParsedEvent is the normalized representation of a VEVENT before
// recurrence expansion.
type ParsedEvent struct {
	UID string
	Seq int

	Summary     string
	Description string

	Start  time.Time
	End    time.Time
	AllDay bool

	// Reminder is minutes before start, taken from the first VALARM with
	// a relative non-positive trigger.
	Reminder *int

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID, if this VEVENT overrides one instance
	IsOverride bool
}

// Parse reads an iCalendar stream. Floating times and dates are
// interpreted in loc. VEVENTs that fail to parse are logged and skipped.
func Parse(r io.Reader, loc *time.Location) ([]ParsedEvent, error) {
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, fmt.Errorf("ics: parse: %w", err)
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp, loc)
		if perr != nil {
			appLog.Error("ics vevent skipped", perr)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parse completed", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (ParsedEvent, error) {
	var out ParsedEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if seqProp := ve.GetProperty(ical.ComponentPropertySequence); seqProp != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(seqProp.Value)); err == nil {
			out.Seq = n
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = textUnescaper.Replace(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = textUnescaper.Replace(p.Value)
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return out, fmt.Errorf("%s: missing DTSTART", out.UID)
	}
	out.AllDay = isDateValue(dtStart)

	if out.AllDay {
		start, err := parseICSTime(dtStart.Value, loc)
		if err != nil {
			return out, fmt.Errorf("%s: DTSTART: %w", out.UID, err)
		}
		out.Start = start
		out.End = start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := parseICSTime(dtEnd.Value, loc); err == nil && end.After(start) {
				out.End = end
			}
		}
	} else {
		start, err := eventTime(dtStart, loc, ve.GetStartAt)
		if err != nil {
			return out, fmt.Errorf("%s: DTSTART: %w", out.UID, err)
		}
		out.Start = start
		out.End = start
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := eventTime(dtEnd, loc, ve.GetEndAt); err == nil && end.After(start) {
				out.End = end
			}
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, propLocation(p, loc)); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if rid := ve.GetProperty("RECURRENCE-ID"); rid != nil {
		if t, err := parseICSTime(rid.Value, propLocation(rid, loc)); err == nil {
			out.Recurrence = &t
			out.IsOverride = true
		}
	}

	out.Reminder = reminderFromAlarms(ve)
	return out, nil
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// eventTime lets the library resolve UTC and TZID-qualified values and
// places floating values in loc.
func eventTime(p *ical.IANAProperty, loc *time.Location, resolve func() (time.Time, error)) (time.Time, error) {
	_, hasTZ := p.ICalParameters["TZID"]
	if hasTZ || strings.HasSuffix(p.Value, "Z") {
		if t, err := resolve(); err == nil {
			return t, nil
		}
	}
	return parseICSTime(p.Value, propLocation(p, loc))
}

// propLocation honours a TZID parameter, falling back to def.
func propLocation(p *ical.IANAProperty, def *time.Location) *time.Location {
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		if loc, err := time.LoadLocation(tzs[0]); err == nil {
			return loc
		}
	}
	return def
}

// parseICSTime parses DATE, floating DATE-TIME and UTC DATE-TIME values.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

func reminderFromAlarms(ve *ical.VEvent) *int {
	for _, alarm := range ve.Alarms() {
		trig := alarm.GetProperty("TRIGGER")
		if trig == nil {
			continue
		}
		if vs, ok := trig.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE-TIME") {
			continue
		}
		d, err := parseDuration(trig.Value)
		if err != nil || d > 0 {
			continue
		}
		m := int((-d).Minutes())
		return &m
	}
	return nil
}

// parseDuration handles RFC 5545 durations such as -PT15M, P1D, -P0DT2H30M
// and P1W.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	orig := s

	sign := time.Duration(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") || len(s) < 2 {
		return 0, fmt.Errorf("invalid duration %q", orig)
	}
	s = s[1:]

	var total time.Duration
	inTime := false
	num := ""
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
			continue
		case r == 'T':
			if inTime || num != "" {
				return 0, fmt.Errorf("invalid duration %q", orig)
			}
			inTime = true
			continue
		}

		if num == "" {
			return 0, fmt.Errorf("invalid duration %q", orig)
		}
		n, _ := strconv.Atoi(num)
		num = ""

		var unit time.Duration
		switch {
		case r == 'W' && !inTime:
			unit = 7 * 24 * time.Hour
		case r == 'D' && !inTime:
			unit = 24 * time.Hour
		case r == 'H' && inTime:
			unit = time.Hour
		case r == 'M' && inTime:
			unit = time.Minute
		case r == 'S' && inTime:
			unit = time.Second
		default:
			return 0, fmt.Errorf("invalid duration %q", orig)
		}
		total += time.Duration(n) * unit
	}
	if num != "" {
		return 0, fmt.Errorf("invalid duration %q", orig)
	}
	return sign * total, nil
}
