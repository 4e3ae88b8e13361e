package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "dayplanner/internal/log"
)

const defaultMaxOccurrencesPerEvent = 5000

// Occurrence is one concrete instance of a possibly recurring VEVENT.
type Occurrence struct {
	UID         string
	Summary     string
	Description string
	AllDay      bool
	Start       time.Time
	End         time.Time
	Reminder    *int
}

// Window bounds recurrence expansion.
type Window struct {
	// Location is the zone occurrences are converted into. Nil means
	// time.Local.
	Location *time.Location

	// Start / End are inclusive.
	Start time.Time
	End   time.Time

	// MaxPerEvent caps occurrences of a single UID. Zero means
	// defaultMaxOccurrencesPerEvent.
	MaxPerEvent int
}

// Expansion is the result of Expand.
type Expansion struct {
	Occurrences []Occurrence
	// Truncated lists UIDs that hit MaxPerEvent.
	Truncated []string
}

// Expand turns parsed VEVENTs into occurrences inside w, applying RRULE,
// EXDATE and RECURRENCE-ID overrides. Output order follows input order of
// base events, then start time within a recurring series.
func Expand(events []ParsedEvent, w Window) (Expansion, error) {
	var result Expansion

	if w.End.Before(w.Start) {
		return result, errors.New("expand: window end is before start")
	}
	if w.Location == nil {
		w.Location = time.Local
	}
	if w.MaxPerEvent <= 0 {
		w.MaxPerEvent = defaultMaxOccurrencesPerEvent
	}

	var bases []ParsedEvent
	overrides := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		bases = append(bases, ev)
	}

	for _, ev := range bases {
		var (
			occ    []Occurrence
			capped bool
		)
		if ev.RawRRule == "" {
			occ = expandSingle(ev, overrides[ev.UID], w)
		} else {
			occ, capped = expandRecurring(ev, overrides[ev.UID], w)
		}
		result.Occurrences = append(result.Occurrences, occ...)

		if capped {
			result.Truncated = append(result.Truncated, ev.UID)
			appLog.Error("expand: occurrences truncated",
				errors.New("max occurrences reached"),
				"uid", ev.UID,
				"cap", w.MaxPerEvent,
			)
		}
	}
	return result, nil
}

func expandSingle(ev ParsedEvent, overrides []ParsedEvent, w Window) []Occurrence {
	if o, ok := findOverride(overrides, ev.Start); ok {
		ev = o
	}
	if !overlaps(ev.Start, ev.End, w.Start, w.End) {
		return nil
	}
	return []Occurrence{makeOccurrence(ev, ev.Start, ev.End, w.Location)}
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, w Window) ([]Occurrence, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: bad RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	starts := set.Between(w.Start.In(ev.Start.Location()), w.End.In(ev.Start.Location()), true)
	capped := false
	if len(starts) > w.MaxPerEvent {
		starts = starts[:w.MaxPerEvent]
		capped = true
	}

	dur := ev.End.Sub(ev.Start)
	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		if o, ok := findOverride(overrides, start); ok {
			out = append(out, makeOccurrence(o, o.Start, o.End, w.Location))
			continue
		}
		end := start.Add(dur)
		if ev.AllDay {
			start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			end = start.AddDate(0, 0, 1)
		}
		out = append(out, makeOccurrence(ev, start, end, w.Location))
	}
	return out, capped
}

// findOverride matches RECURRENCE-ID against an instance start by instant.
func findOverride(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// makeOccurrence converts timed instances into loc. All-day instances keep
// their calendar date.
func makeOccurrence(ev ParsedEvent, start, end time.Time, loc *time.Location) Occurrence {
	if !ev.AllDay {
		start = start.In(loc)
		end = end.In(loc)
	}
	return Occurrence{
		UID:         ev.UID,
		Summary:     ev.Summary,
		Description: ev.Description,
		AllDay:      ev.AllDay,
		Start:       start,
		End:         end,
		Reminder:    ev.Reminder,
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
