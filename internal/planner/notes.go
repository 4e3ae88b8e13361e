package planner

import (
	"slices"
	"strings"

	appLog "dayplanner/internal/log"
	"dayplanner/internal/model"
)

type NoteInput struct {
	Title   string
	Content string
}

func validateNote(in NoteInput) (model.Note, error) {
	title, err := requireTitle(in.Title, "Название заметки обязательно!")
	if err != nil {
		return model.Note{}, err
	}
	return model.Note{Title: title, Content: strings.TrimSpace(in.Content)}, nil
}

func (p *Planner) AddNote(in NoteInput) (model.Note, error) {
	note, err := validateNote(in)
	if err != nil {
		return model.Note{}, err
	}

	maxID := 0
	for _, n := range p.doc.Notes {
		maxID = max(maxID, n.ID)
	}
	note.ID = p.nextID(KindNote, maxID)
	note.CreatedAt = p.timestamp()
	note.UpdatedAt = note.CreatedAt

	p.doc.Notes = append(p.doc.Notes, note)
	appLog.Info("note added", "id", note.ID)
	return note, p.save()
}

func (p *Planner) noteIndex(id int) (int, error) {
	i := slices.IndexFunc(p.doc.Notes, func(n model.Note) bool { return n.ID == id })
	if i < 0 {
		return -1, &NotFoundError{Kind: KindNote, ID: id}
	}
	return i, nil
}

func (p *Planner) Note(id int) (model.Note, error) {
	i, err := p.noteIndex(id)
	if err != nil {
		return model.Note{}, err
	}
	return p.doc.Notes[i], nil
}

// EditNote always refreshes updated_at, even when nothing changed; the
// list order is "most recently touched first".
func (p *Planner) EditNote(id int, in NoteInput) (model.Note, error) {
	i, err := p.noteIndex(id)
	if err != nil {
		return model.Note{}, err
	}
	upd, err := validateNote(in)
	if err != nil {
		return model.Note{}, err
	}

	n := &p.doc.Notes[i]
	n.Title = upd.Title
	n.Content = upd.Content
	n.UpdatedAt = p.timestamp()

	appLog.Info("note edited", "id", id)
	return *n, p.save()
}

func (p *Planner) DeleteNote(id int) error {
	i, err := p.noteIndex(id)
	if err != nil {
		return err
	}
	p.doc.Notes = slices.Delete(p.doc.Notes, i, i+1)

	appLog.Info("note deleted", "id", id)
	return p.save()
}

// ListNotes searches title and content, newest updated_at first.
func (p *Planner) ListNotes(search string) []model.Note {
	out := make([]model.Note, 0, len(p.doc.Notes))
	for _, n := range p.doc.Notes {
		if matches(search, n.Title, n.Content) {
			out = append(out, n)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Note) int {
		return strings.Compare(b.UpdatedAt, a.UpdatedAt)
	})
	return out
}
