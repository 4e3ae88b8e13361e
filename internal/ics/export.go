// Package ics converts planner events to and from iCalendar (RFC 5545).
package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "dayplanner/internal/log"
	"dayplanner/internal/model"
)

type ExportOptions struct {
	ProductID string
	// Duration is DTEND - DTSTART for timed events.
	Duration time.Duration
	Location *time.Location
	// Now stamps DTSTAMP. Zero means time.Now.
	Now time.Time
}

// UID is the stable identifier written for a planner event.
func UID(e model.Event) string {
	return fmt.Sprintf("event-%d@dayplanner", e.ID)
}

// Build converts events into a calendar. Events whose date or time do not
// parse are skipped and logged.
func Build(events []model.Event, opts ExportOptions) *ical.Calendar {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Duration <= 0 {
		opts.Duration = time.Hour
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	if opts.ProductID != "" {
		cal.SetProductId(opts.ProductID)
	}

	for _, e := range events {
		if err := addEvent(cal, e, opts); err != nil {
			appLog.Error("ics export: event skipped", err, "id", e.ID)
		}
	}
	return cal
}

// Export writes events as an iCalendar document.
func Export(w io.Writer, events []model.Event, opts ExportOptions) error {
	cal := Build(events, opts)
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("ics: write: %w", err)
	}
	appLog.Info("ics export completed", "event_count", len(cal.Events()))
	return nil
}

func addEvent(cal *ical.Calendar, e model.Event, opts ExportOptions) error {
	date, err := time.ParseInLocation(model.DateLayout, e.Date, opts.Location)
	if err != nil {
		return fmt.Errorf("date %q: %w", e.Date, err)
	}

	var start, end time.Time
	if e.Time != nil {
		start, err = time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, e.Date+" "+*e.Time, opts.Location)
		if err != nil {
			return fmt.Errorf("time %q: %w", *e.Time, err)
		}
		end = start.Add(opts.Duration)
	}

	ve := cal.AddEvent(UID(e))
	ve.SetDtStampTime(opts.Now)
	ve.SetSummary(e.Title)
	if e.Description != "" {
		ve.SetDescription(e.Description)
	}
	if e.Time != nil {
		ve.SetStartAt(start)
		ve.SetEndAt(end)
	} else {
		ve.SetAllDayStartAt(date)
		ve.SetAllDayEndAt(date.AddDate(0, 0, 1))
	}

	if e.Reminder != nil {
		alarm := ve.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetTrigger(triggerBefore(*e.Reminder))
		alarm.SetProperty(ical.ComponentPropertyDescription, e.Title)
	}
	return nil
}

// triggerBefore formats a negative relative trigger, e.g. -P0DT0H15M.
func triggerBefore(minutes int) string {
	days := minutes / (24 * 60)
	rest := minutes % (24 * 60)
	return fmt.Sprintf("-P%dDT%dH%dM", days, rest/60, rest%60)
}
