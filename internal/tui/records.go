package tui

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"dayplanner/internal/model"
	"dayplanner/internal/planner"
)

const (
	noDueDate  = "Нет срока"
	allDay     = "Весь день"
	noReminder = "Нет"
	statusDone = "Завершено"
	statusOpen = "Активно"
	choiceNo   = "Нет"
	choiceYes  = "Да"
)

func priorityLabels() []string {
	out := make([]string, len(model.Priorities))
	for i, p := range model.Priorities {
		out[i] = string(p)
	}
	return out
}

func taskForm(id int, t *model.Task) *form {
	if t == nil {
		return newForm("Добавить задачу", planner.KindTask, 0,
			lineField("title", "Название задачи:", "", ""),
			textField("description", "Описание:", ""),
			choiceField("priority", "Приоритет:", priorityLabels(), string(model.PriorityMedium)),
			lineField("due_date", "Срок выполнения (ГГГГ-ММ-ДД):", "", "2024-01-31"),
		)
	}
	done := choiceNo
	if t.Completed {
		done = choiceYes
	}
	// A label kept verbatim from the data file has no option of its own.
	priority := string(t.Priority)
	if !slices.Contains(priorityLabels(), priority) {
		priority = string(model.PriorityMedium)
	}
	return newForm("Редактировать задачу", planner.KindTask, id,
		lineField("title", "Название задачи:", t.Title, ""),
		textField("description", "Описание:", t.Description),
		choiceField("priority", "Приоритет:", priorityLabels(), priority),
		lineField("due_date", "Срок выполнения (ГГГГ-ММ-ДД):", model.Deref(t.DueDate), "2024-01-31"),
		choiceField("completed", "Завершено:", []string{choiceNo, choiceYes}, done),
	)
}

// eventForm pre-fills the date with today when adding.
func eventForm(id int, e *model.Event, today string) *form {
	title := "Добавить событие"
	var ev model.Event
	if e != nil {
		title = "Редактировать событие"
		ev = *e
	} else {
		ev.Date = today
	}
	reminder := ""
	if ev.Reminder != nil {
		reminder = strconv.Itoa(*ev.Reminder)
	}
	return newForm(title, planner.KindEvent, id,
		lineField("title", "Название события:", ev.Title, ""),
		textField("description", "Описание:", ev.Description),
		lineField("date", "Дата события (ГГГГ-ММ-ДД):", ev.Date, today),
		lineField("time", "Время (ЧЧ:ММ):", model.Deref(ev.Time), "09:00"),
		lineField("reminder", "Напоминание (минуты до события):", reminder, "15"),
	)
}

func noteForm(id int, n *model.Note) *form {
	title := "Добавить заметку"
	var note model.Note
	if n != nil {
		title = "Редактировать заметку"
		note = *n
	}
	return newForm(title, planner.KindNote, id,
		lineField("title", "Название заметки:", note.Title, ""),
		textField("content", "Содержание:", note.Content),
	)
}

// submit runs the add or edit operation the form stands for.
func submit(p *planner.Planner, f *form) error {
	var err error
	switch f.kind {
	case planner.KindTask:
		in := planner.TaskInput{
			Title:       f.get("title"),
			Description: f.get("description"),
			Priority:    f.get("priority"),
			DueDate:     f.get("due_date"),
		}
		if f.id == 0 {
			_, err = p.AddTask(in)
		} else {
			done := f.get("completed") == choiceYes
			in.Completed = &done
			_, err = p.EditTask(f.id, in)
		}
	case planner.KindEvent:
		in := planner.EventInput{
			Title:       f.get("title"),
			Description: f.get("description"),
			Date:        f.get("date"),
			Time:        f.get("time"),
			Reminder:    f.get("reminder"),
		}
		if f.id == 0 {
			_, err = p.AddEvent(in)
		} else {
			_, err = p.EditEvent(f.id, in)
		}
	case planner.KindNote:
		in := planner.NoteInput{Title: f.get("title"), Content: f.get("content")}
		if f.id == 0 {
			_, err = p.AddNote(in)
		} else {
			_, err = p.EditNote(f.id, in)
		}
	}
	return err
}

func deleteRecord(p *planner.Planner, kind planner.Kind, id int) error {
	switch kind {
	case planner.KindTask:
		return p.DeleteTask(id)
	case planner.KindEvent:
		return p.DeleteEvent(id)
	default:
		return p.DeleteNote(id)
	}
}

func taskRows(tasks []model.Task) []table.Row {
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		due := model.Deref(t.DueDate)
		if due == "" {
			due = noDueDate
		}
		status := statusOpen
		if t.Completed {
			status = statusDone
		}
		rows = append(rows, table.Row{strconv.Itoa(t.ID), t.Title, string(t.Priority), due, status})
	}
	return rows
}

func eventRows(events []model.Event) []table.Row {
	rows := make([]table.Row, 0, len(events))
	for _, e := range events {
		at := allDay
		if e.Time != nil {
			at = *e.Time
		}
		reminder := noReminder
		if e.Reminder != nil && *e.Reminder > 0 {
			reminder = fmt.Sprintf("%d мин", *e.Reminder)
		}
		rows = append(rows, table.Row{strconv.Itoa(e.ID), e.Title, e.Date, at, reminder})
	}
	return rows
}

func noteRows(notes []model.Note) []table.Row {
	rows := make([]table.Row, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, table.Row{strconv.Itoa(n.ID), n.Title, model.ShownTimestamp(n.CreatedAt), model.ShownTimestamp(n.UpdatedAt)})
	}
	return rows
}
