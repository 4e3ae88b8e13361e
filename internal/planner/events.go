package planner

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	appLog "dayplanner/internal/log"
	"dayplanner/internal/model"
)

type EventInput struct {
	Title       string
	Description string
	Date        string
	Time        string
	Reminder    string
}

type EventFilter string

const (
	EventAll      EventFilter = "all"
	EventUpcoming EventFilter = "upcoming"
	EventPast     EventFilter = "past"
)

var EventFilters = []EventFilter{EventAll, EventUpcoming, EventPast}

var eventFilterLabels = map[EventFilter]string{
	EventAll:      "Все",
	EventUpcoming: "Предстоящие",
	EventPast:     "Прошедшие",
}

func (f EventFilter) Label() string {
	if l, ok := eventFilterLabels[f]; ok {
		return l
	}
	return string(f)
}

func ParseEventFilter(s string) (EventFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return EventAll, nil
	}
	for _, f := range EventFilters {
		if s == string(f) || s == strings.ToLower(f.Label()) {
			return f, nil
		}
	}
	return "", invalid("filter", "Неизвестный фильтр событий: "+s)
}

func validateEvent(in EventInput) (model.Event, error) {
	title, err := requireTitle(in.Title, "Название события обязательно!")
	if err != nil {
		return model.Event{}, err
	}
	if strings.TrimSpace(in.Date) == "" {
		return model.Event{}, invalid("date", "Дата события обязательна!")
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return model.Event{}, err
	}

	ev := model.Event{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Date:        date,
	}

	if s := strings.TrimSpace(in.Time); s != "" {
		t, err := time.Parse(model.TimeLayout, s)
		if err != nil {
			return model.Event{}, invalid("time", "Неверный формат времени! Используйте ЧЧ:ММ")
		}
		norm := t.Format(model.TimeLayout)
		ev.Time = &norm
	}

	if s := strings.TrimSpace(in.Reminder); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return model.Event{}, invalid("reminder", "Напоминание должно быть целым неотрицательным числом минут!")
		}
		ev.Reminder = &n
	}
	return ev, nil
}

func (p *Planner) AddEvent(in EventInput) (model.Event, error) {
	ev, err := validateEvent(in)
	if err != nil {
		return model.Event{}, err
	}

	maxID := 0
	for _, e := range p.doc.Events {
		maxID = max(maxID, e.ID)
	}
	ev.ID = p.nextID(KindEvent, maxID)
	ev.CreatedAt = p.timestamp()
	ev.UpdatedAt = ev.CreatedAt

	p.doc.Events = append(p.doc.Events, ev)
	appLog.Info("event added", "id", ev.ID, "date", ev.Date)
	return ev, p.save()
}

func (p *Planner) eventIndex(id int) (int, error) {
	i := slices.IndexFunc(p.doc.Events, func(e model.Event) bool { return e.ID == id })
	if i < 0 {
		return -1, &NotFoundError{Kind: KindEvent, ID: id}
	}
	return i, nil
}

func (p *Planner) Event(id int) (model.Event, error) {
	i, err := p.eventIndex(id)
	if err != nil {
		return model.Event{}, err
	}
	return p.doc.Events[i], nil
}

func (p *Planner) EditEvent(id int, in EventInput) (model.Event, error) {
	i, err := p.eventIndex(id)
	if err != nil {
		return model.Event{}, err
	}
	upd, err := validateEvent(in)
	if err != nil {
		return model.Event{}, err
	}

	e := &p.doc.Events[i]
	e.Title = upd.Title
	e.Description = upd.Description
	e.Date = upd.Date
	e.Time = upd.Time
	e.Reminder = upd.Reminder
	e.UpdatedAt = p.timestamp()

	appLog.Info("event edited", "id", id)
	return *e, p.save()
}

func (p *Planner) DeleteEvent(id int) error {
	i, err := p.eventIndex(id)
	if err != nil {
		return err
	}
	p.doc.Events = slices.Delete(p.doc.Events, i, i+1)

	appLog.Info("event deleted", "id", id)
	return p.save()
}

// IsUpcoming reports whether the event falls today or later.
func (p *Planner) IsUpcoming(e model.Event) bool {
	return e.Date >= p.Today()
}

// ListEvents filters and searches events, ordered by (date, time) with
// untimed events treated as 00:00.
func (p *Planner) ListEvents(filter EventFilter, search string) []model.Event {
	today := p.Today()
	out := make([]model.Event, 0, len(p.doc.Events))
	for _, e := range p.doc.Events {
		switch filter {
		case EventUpcoming:
			if e.Date < today {
				continue
			}
		case EventPast:
			if e.Date >= today {
				continue
			}
		}
		if !matches(search, e.Title, e.Description) {
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b model.Event) int {
		return cmp.Or(
			strings.Compare(a.Date, b.Date),
			strings.Compare(a.SortTime(), b.SortTime()),
		)
	})
	return out
}
