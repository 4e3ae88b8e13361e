// Package planner implements the task, event and note operations on top of
// an in-memory document. Every successful mutation rewrites the whole
// document through the Saver before returning.
package planner

import (
	"fmt"
	"strings"
	"time"

	appLog "dayplanner/internal/log"
	"dayplanner/internal/model"
)

// Saver persists the full document. *store.Store satisfies it.
type Saver interface {
	Save(doc *model.Document) error
}

type Planner struct {
	doc   *model.Document
	saver Saver
	now   func() time.Time
	loc   *time.Location

	// highest id handed out per collection during this process, so an id
	// freed by deleting the maximum is not reused.
	lastID map[Kind]int
}

type Option func(*Planner)

// WithClock overrides time.Now, for tests and deterministic imports.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the zone that decides "today" and timestamps.
func WithLocation(loc *time.Location) Option {
	return func(p *Planner) {
		if loc != nil {
			p.loc = loc
		}
	}
}

func New(doc *model.Document, saver Saver, opts ...Option) *Planner {
	if doc == nil {
		doc = &model.Document{}
	}
	doc.Normalize()

	p := &Planner{
		doc:    doc,
		saver:  saver,
		now:    time.Now,
		loc:    time.Local,
		lastID: make(map[Kind]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Document exposes the live document so tests can inspect the raw
// collections. Callers must not mutate it.
func (p *Planner) Document() *model.Document {
	return p.doc
}

// Today is the current date in the planner's zone, as YYYY-MM-DD.
func (p *Planner) Today() string {
	return p.now().In(p.loc).Format(model.DateLayout)
}

func (p *Planner) Location() *time.Location {
	return p.loc
}

func (p *Planner) timestamp() string {
	return p.now().In(p.loc).Format(model.TimestampLayout)
}

func (p *Planner) save() error {
	if p.saver == nil {
		return nil
	}
	if err := p.saver.Save(p.doc); err != nil {
		appLog.Error("save failed", err)
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func (p *Planner) nextID(kind Kind, maxLive int) int {
	next := maxLive
	if last := p.lastID[kind]; last > next {
		next = last
	}
	next++
	p.lastID[kind] = next
	return next
}

// matches reports whether query is a case-insensitive substring of the
// space-joined fields. An empty query matches everything.
func matches(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(fields, " ")), query)
}

func requireTitle(title, msg string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title", msg)
	}
	return title, nil
}

// parseDate validates a YYYY-MM-DD calendar date and returns it in
// canonical form ("2024-1-5" is rejected, "2024-02-30" too).
func parseDate(field, s string) (string, error) {
	d, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", invalid(field, "Неверный формат даты! Используйте ГГГГ-ММ-ДД")
	}
	return d.Format(model.DateLayout), nil
}
