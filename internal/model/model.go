package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layouts used both on disk and for validating form input.
const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04"
	TimestampLayout = "2006-01-02 15:04:05"

	// ShownLayout is how timestamps are displayed to the user.
	ShownLayout = "02.01.2006 15:04"
)

// Priority is persisted with the Russian labels the planner has always
// written, so existing data files keep loading.
type Priority string

const (
	PriorityLow    Priority = "Низкий"
	PriorityMedium Priority = "Средний"
	PriorityHigh   Priority = "Высокий"
)

// Priorities lists the valid values in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority accepts the stored label or an English name, case
// insensitively. An empty string yields PriorityMedium.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PriorityMedium, nil
	case "низкий", "low":
		return PriorityLow, nil
	case "средний", "medium":
		return PriorityMedium, nil
	case "высокий", "high":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// UnmarshalJSON tolerates English names and null, which older or
// hand-edited files may contain. Unrecognised labels are kept verbatim
// rather than failing the whole document.
func (p *Priority) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		*p = Priority(s)
		return nil
	}
	*p = parsed
	return nil
}

type Task struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	DueDate     *string  `json:"due_date"`
	Completed   bool     `json:"completed"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// HasDueDate reports whether the task carries a non-empty due date.
func (t Task) HasDueDate() bool {
	return t.DueDate != nil && *t.DueDate != ""
}

type Event struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Time        *string `json:"time"`
	// Reminder is minutes before the event. It is stored and exported,
	// never fired.
	Reminder  *int   `json:"reminder"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// SortTime is the event time used for ordering; untimed events sort as
// midnight.
func (e Event) SortTime() string {
	if e.Time == nil || *e.Time == "" {
		return "00:00"
	}
	return *e.Time
}

type Note struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Document is the whole persisted state. The three collections are always
// written together.
type Document struct {
	Tasks  []Task  `json:"tasks"`
	Events []Event `json:"events"`
	Notes  []Note  `json:"notes"`
}

// Normalize replaces nil collections with empty ones so the file always
// carries all three keys as arrays.
func (d *Document) Normalize() {
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.Events == nil {
		d.Events = []Event{}
	}
	if d.Notes == nil {
		d.Notes = []Note{}
	}
	for i := range d.Tasks {
		if d.Tasks[i].Priority == "" {
			d.Tasks[i].Priority = PriorityMedium
		}
	}
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ShownTimestamp renders a stored timestamp in ShownLayout, or verbatim if
// it does not parse.
func ShownTimestamp(ts string) string {
	t, err := time.Parse(TimestampLayout, ts)
	if err != nil {
		return ts
	}
	return t.Format(ShownLayout)
}
