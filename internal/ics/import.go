package ics

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	appLog "dayplanner/internal/log"
	"dayplanner/internal/model"
	"dayplanner/internal/planner"
)

// EventAdder is the part of *planner.Planner the importer needs.
type EventAdder interface {
	AddEvent(in planner.EventInput) (model.Event, error)
	ListEvents(filter planner.EventFilter, search string) []model.Event
}

type ImportOptions struct {
	Location     *time.Location
	Now          time.Time
	HorizonDays  int
	BackfillDays int
}

type ImportResult struct {
	Added []model.Event
	// Duplicates already present with the same title, date and time.
	Duplicates int
	// Rejected by validation, e.g. VEVENTs without a SUMMARY.
	Rejected  int
	Truncated []string
}

// Window returns the expansion window [today-backfill, today+horizon]
// with day granularity in opts.Location.
func (opts ImportOptions) Window() Window {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return Window{
		Location: loc,
		Start:    today.AddDate(0, 0, -opts.BackfillDays),
		End:      today.AddDate(0, 0, opts.HorizonDays+1).Add(-time.Second),
	}
}

// Import parses r, expands recurrences and adds each occurrence through
// dst so that normal validation and id assignment apply. It stops at the
// first persistence error.
func Import(dst EventAdder, r io.Reader, opts ImportOptions) (ImportResult, error) {
	var res ImportResult

	w := opts.Window()
	parsed, err := Parse(r, w.Location)
	if err != nil {
		return res, err
	}
	exp, err := Expand(parsed, w)
	if err != nil {
		return res, err
	}
	res.Truncated = exp.Truncated

	seen := make(map[string]bool)
	for _, e := range dst.ListEvents(planner.EventAll, "") {
		seen[eventKey(e.Title, e.Date, model.Deref(e.Time))] = true
	}

	for _, occ := range exp.Occurrences {
		in := toInput(occ)
		key := eventKey(in.Title, in.Date, in.Time)
		if seen[key] {
			res.Duplicates++
			continue
		}

		ev, err := dst.AddEvent(in)
		if err != nil {
			if errors.Is(err, planner.ErrValidation) {
				appLog.Info("ics import: occurrence rejected", "uid", occ.UID, "reason", err.Error())
				res.Rejected++
				continue
			}
			return res, fmt.Errorf("ics: import %s: %w", occ.UID, err)
		}
		seen[key] = true
		res.Added = append(res.Added, ev)
	}

	appLog.Info("ics import completed",
		"added", len(res.Added),
		"duplicates", res.Duplicates,
		"rejected", res.Rejected,
	)
	return res, nil
}

func toInput(occ Occurrence) planner.EventInput {
	in := planner.EventInput{
		Title:       occ.Summary,
		Description: occ.Description,
		Date:        occ.Start.Format(model.DateLayout),
	}
	if !occ.AllDay {
		in.Time = occ.Start.Format(model.TimeLayout)
	}
	if occ.Reminder != nil {
		in.Reminder = strconv.Itoa(*occ.Reminder)
	}
	return in
}

func eventKey(title, date, hhmm string) string {
	return strings.TrimSpace(title) + "\x00" + date + "\x00" + hhmm
}
