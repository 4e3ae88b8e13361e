package planner

import "dayplanner/internal/model"

type TaskStats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Active       int `json:"active"`
	HighPriority int `json:"high_priority"`
}

type EventStats struct {
	Total    int `json:"total"`
	Upcoming int `json:"upcoming"`
	Past     int `json:"past"`
}

type NoteStats struct {
	Total int `json:"total"`
}

type Stats struct {
	Tasks  TaskStats  `json:"tasks"`
	Events EventStats `json:"events"`
	Notes  NoteStats  `json:"notes"`
}

// Stats recomputes the aggregate counts from the live collections.
func (p *Planner) Stats() Stats {
	var s Stats

	s.Tasks.Total = len(p.doc.Tasks)
	for _, t := range p.doc.Tasks {
		if t.Completed {
			s.Tasks.Completed++
		}
		if t.Priority == model.PriorityHigh {
			s.Tasks.HighPriority++
		}
	}
	s.Tasks.Active = s.Tasks.Total - s.Tasks.Completed

	s.Events.Total = len(p.doc.Events)
	for _, e := range p.doc.Events {
		if p.IsUpcoming(e) {
			s.Events.Upcoming++
		}
	}
	s.Events.Past = s.Events.Total - s.Events.Upcoming

	s.Notes.Total = len(p.doc.Notes)
	return s
}
