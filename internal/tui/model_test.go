package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"dayplanner/internal/model"
	"dayplanner/internal/planner"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, opts Options) (Model, *planner.Planner) {
	t.Helper()
	p := planner.New(nil, nil,
		planner.WithLocation(time.UTC),
		planner.WithClock(func() time.Time { return fixedNow }),
	)
	if opts.CopyText == nil {
		opts.CopyText = func(string) error { return nil }
	}
	return New(p, opts), p
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyRight    = tea.KeyMsg{Type: tea.KeyRight}
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keySave     = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestAddTaskThroughForm(t *testing.T) {
	m, p := newTestModel(t, Options{})

	m = send(m, runes("a"))
	if m.mode != FormView || m.form == nil {
		t.Fatalf("mode = %v, want form", m.mode)
	}
	m = send(m,
		runes("Buy milk"),
		keyTab, runes("2%"),
		keyTab, keyRight,
		keyTab, runes("2024-01-01"),
		keySave,
	)

	if m.mode != BrowseView || m.form != nil {
		t.Fatalf("form should close after save, mode = %v", m.mode)
	}
	tasks := p.Document().Tasks
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	got := tasks[0]
	if got.ID != 1 || got.Title != "Buy milk" || got.Description != "2%" ||
		got.Priority != model.PriorityHigh || model.Deref(got.DueDate) != "2024-01-01" || got.Completed {
		t.Errorf("task = %+v", got)
	}
	if rows := m.tables[TasksTab].Rows(); len(rows) != 1 || rows[0][1] != "Buy milk" {
		t.Errorf("table not refreshed: %v", rows)
	}
}

func TestValidationKeepsFormOpen(t *testing.T) {
	m, p := newTestModel(t, Options{})

	m = send(m, runes("a"), keyTab, runes("только описание"), keySave)
	if m.mode != AlertView {
		t.Fatalf("mode = %v, want alert", m.mode)
	}
	if m.alert.body != "Название задачи обязательно!" || m.alert.title != "Ошибка" {
		t.Errorf("alert = %+v", m.alert)
	}
	if len(p.Document().Tasks) != 0 {
		t.Error("invalid task committed")
	}

	m = send(m, keyEnter)
	if m.mode != FormView || m.form == nil {
		t.Fatalf("form should reopen after the alert, mode = %v", m.mode)
	}
	if got := m.form.get("description"); got != "только описание" {
		t.Errorf("input lost: %q", got)
	}

	m = send(m, keyEsc)
	if m.mode != BrowseView || m.form != nil {
		t.Error("esc should cancel the form")
	}
}

func TestSelectionWarnings(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	tests := []struct {
		tab  Tab
		key  string
		want string
	}{
		{TasksTab, "e", "Выберите задачу для редактирования"},
		{TasksTab, "d", "Выберите задачу для удаления"},
		{TasksTab, "c", "Выберите задачу для отметки"},
		{EventsTab, "e", "Выберите событие для редактирования"},
		{NotesTab, "d", "Выберите заметку для удаления"},
	}
	for _, tt := range tests {
		m.activeTab = tt.tab
		got := send(m, runes(tt.key))
		if got.mode != AlertView || got.alert.body != tt.want {
			t.Errorf("%v %q: alert = %+v", tt.tab, tt.key, got.alert)
		}
	}
}

func TestEditPrefillsForm(t *testing.T) {
	m, p := newTestModel(t, Options{})
	if _, err := p.AddTask(planner.TaskInput{Title: "Курсовая", Priority: "low", DueDate: "2024-06-30"}); err != nil {
		t.Fatal(err)
	}
	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m.refresh()

	m = send(m, runes("e"))
	if m.form == nil {
		t.Fatal("edit form not opened")
	}
	if m.form.get("title") != "Курсовая" || m.form.get("priority") != "Низкий" ||
		m.form.get("due_date") != "2024-06-30" || m.form.get("completed") != "Нет" {
		t.Errorf("form not pre-populated: %q %q %q", m.form.get("title"), m.form.get("priority"), m.form.get("due_date"))
	}

	// Move to the completion toggle and flip it.
	m = send(m, keyShiftTab, runes(" "), keySave)
	task, _ := p.Task(1)
	if !task.Completed || task.Title != "Курсовая" {
		t.Errorf("edit not applied: %+v", task)
	}
}

func TestDeleteAsksConfirmation(t *testing.T) {
	m, p := newTestModel(t, Options{})
	p.AddNote(planner.NoteInput{Title: "Лекция 1"})
	m.activeTab = NotesTab
	m.refresh()

	m = send(m, runes("d"))
	if m.mode != ConfirmView || m.confirm.question != "Вы уверены, что хотите удалить эту заметку?" {
		t.Fatalf("confirm = %+v", m.confirm)
	}
	m = send(m, runes("n"))
	if len(p.Document().Notes) != 1 {
		t.Fatal("declined delete removed the note")
	}

	m = send(m, runes("d"), runes("y"))
	if len(p.Document().Notes) != 0 {
		t.Fatal("confirmed delete kept the note")
	}
	if rows := m.tables[NotesTab].Rows(); len(rows) != 0 {
		t.Errorf("rows after delete = %v", rows)
	}
}

func TestCompleteAndFilter(t *testing.T) {
	m, p := newTestModel(t, Options{})
	p.AddTask(planner.TaskInput{Title: "a1"})
	p.AddTask(planner.TaskInput{Title: "a2", DueDate: "2024-01-01"})
	m.refresh()

	// a2 sorts first because it has a due date.
	m = send(m, runes("c"))
	if task, _ := p.Task(2); !task.Completed {
		t.Fatal("selected task not completed")
	}

	m = send(m, runes("f"))
	if m.taskFilter != planner.TaskActive {
		t.Fatalf("filter = %v", m.taskFilter)
	}
	if rows := m.tables[TasksTab].Rows(); len(rows) != 1 || rows[0][1] != "a1" {
		t.Errorf("active rows = %v", rows)
	}
	m = send(m, runes("f"))
	if rows := m.tables[TasksTab].Rows(); len(rows) != 1 || rows[0][4] != "Завершено" {
		t.Errorf("completed rows = %v", rows)
	}
}

func TestLiveSearch(t *testing.T) {
	m, p := newTestModel(t, Options{})
	p.AddEvent(planner.EventInput{Title: "Экзамен", Description: "матанализ", Date: "2024-06-20"})
	p.AddEvent(planner.EventInput{Title: "Концерт", Date: "2024-06-21", Time: "19:00", Reminder: "30"})
	m = send(m, keyTab)
	if m.activeTab != EventsTab {
		t.Fatalf("tab = %v", m.activeTab)
	}

	m = send(m, runes("/"), runes("МАТ"))
	rows := m.tables[EventsTab].Rows()
	if len(rows) != 1 || rows[0][1] != "Экзамен" || rows[0][3] != "Весь день" || rows[0][4] != "Нет" {
		t.Errorf("search rows = %v", rows)
	}

	m = send(m, keyEsc)
	if m.mode != BrowseView || m.search[EventsTab].Value() != "МАТ" {
		t.Errorf("esc should leave search with the query kept")
	}

	m.search[EventsTab].SetValue("")
	m.refresh()
	rows = m.tables[EventsTab].Rows()
	if len(rows) != 2 || rows[1][3] != "19:00" || rows[1][4] != "30 мин" {
		t.Errorf("rows = %v", rows)
	}
}

func TestEventFormDefaultsToToday(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = send(m, keyTab, runes("a"))
	if m.form == nil || m.form.get("date") != "2024-06-15" {
		t.Fatalf("date not pre-filled")
	}
}

func TestStatsTab(t *testing.T) {
	m, p := newTestModel(t, Options{})
	p.AddTask(planner.TaskInput{Title: "x", Priority: "high"})
	p.AddEvent(planner.EventInput{Title: "old", Date: "2020-01-01"})

	m = send(m, keyShiftTab)
	if m.activeTab != StatsTab {
		t.Fatalf("tab = %v", m.activeTab)
	}
	view := m.View()
	for _, want := range []string{"Всего задач: 1", "Высокий приоритет: 1", "Прошедшие: 1", "Всего заметок: 0"} {
		if !strings.Contains(view, want) {
			t.Errorf("stats view missing %q", want)
		}
	}

	p.AddNote(planner.NoteInput{Title: "n"})
	if !strings.Contains(m.View(), "Всего заметок: 1") {
		t.Error("stats should be recomputed on every render")
	}
}

func TestCopyNote(t *testing.T) {
	var copied string
	m, p := newTestModel(t, Options{CopyText: func(s string) error { copied = s; return nil }})
	p.AddNote(planner.NoteInput{Title: "Ссылки", Content: "https://example.org"})
	m.activeTab = NotesTab
	m.refresh()

	next, cmd := m.Update(runes("y"))
	if cmd == nil {
		t.Fatal("copy should return a command")
	}
	msg := cmd()
	m = send(next.(Model), msg)
	if copied != "https://example.org" {
		t.Errorf("copied = %q", copied)
	}
	if !strings.HasPrefix(m.status, "Скопировано") {
		t.Errorf("status = %q", m.status)
	}

	m, p = newTestModel(t, Options{CopyText: func(string) error { return errors.New("no display") }})
	p.AddNote(planner.NoteInput{Title: "n", Content: "c"})
	m.activeTab = NotesTab
	m.refresh()
	_, cmd = m.Update(runes("y"))
	if got := cmd(); !strings.Contains(string(got.(statusMsg)), "no display") {
		t.Errorf("failure status = %v", got)
	}
}

func TestDayRolloverRefreshesPartitions(t *testing.T) {
	now := fixedNow
	p := planner.New(nil, nil,
		planner.WithLocation(time.UTC),
		planner.WithClock(func() time.Time { return now }),
	)
	p.AddEvent(planner.EventInput{Title: "Сегодня", Date: "2024-06-15"})

	m := New(p, Options{DayRollover: "0 0 * * *", CopyText: func(string) error { return nil }})
	if m.Init() == nil {
		t.Fatal("rollover should be scheduled")
	}
	m.eventFilter = planner.EventUpcoming
	m.refresh()
	if len(m.tables[EventsTab].Rows()) != 1 {
		t.Fatal("today's event should be upcoming")
	}

	now = fixedNow.Add(24 * time.Hour)
	next, cmd := m.Update(rolloverMsg(now))
	if cmd == nil {
		t.Error("rollover should reschedule itself")
	}
	if rows := next.(Model).tables[EventsTab].Rows(); len(rows) != 0 {
		t.Errorf("yesterday's event still upcoming: %v", rows)
	}
}

func TestInvalidRolloverDisablesSchedule(t *testing.T) {
	m, _ := newTestModel(t, Options{DayRollover: "whenever"})
	if m.Init() != nil {
		t.Error("invalid cron spec should disable the schedule")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestSelectionAfterEmptyStart(t *testing.T) {
	m, p := newTestModel(t, Options{})
	if c := m.tables[TasksTab].Cursor(); c != 0 {
		t.Fatalf("cursor on an empty table = %d, want 0", c)
	}

	m = send(m, runes("a"), runes("Buy milk"), keySave, runes("c"))
	if m.mode != BrowseView {
		t.Fatalf("mode = %v, alert = %+v", m.mode, m.alert)
	}
	if task, _ := p.Task(1); !task.Completed {
		t.Fatal("task added into an empty table could not be completed")
	}

	// A search that empties the table must not lose the selection.
	backspace := tea.KeyMsg{Type: tea.KeyBackspace}
	m = send(m, runes("/"), runes("zz"))
	if rows := m.tables[TasksTab].Rows(); len(rows) != 0 {
		t.Fatalf("search rows = %v", rows)
	}
	m = send(m, backspace, backspace, keyEsc, runes("e"))
	if m.mode != FormView || m.form.get("title") != "Buy milk" {
		t.Fatalf("edit after clearing the search: mode = %v alert = %+v", m.mode, m.alert)
	}
	m = send(m, keyEsc)

	// Moving on an empty table and then adding a record.
	m = send(m, keyTab, keyTab)
	if m.activeTab != NotesTab {
		t.Fatalf("tab = %v", m.activeTab)
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(m, runes("a"), runes("Лекция"), keySave, runes("d"))
	if m.mode != ConfirmView || m.confirm.id != 1 {
		t.Fatalf("delete after moving on an empty table: mode = %v alert = %+v", m.mode, m.alert)
	}
	m = send(m, runes("y"))
	if len(p.Document().Notes) != 0 {
		t.Fatal("note not deleted")
	}

	// Deleting the last row leaves the next added row selectable.
	m = send(m, runes("a"), runes("Семинар"), keySave, runes("e"))
	if m.mode != FormView || m.form.get("title") != "Семинар" {
		t.Errorf("edit after deleting the last row: mode = %v alert = %+v", m.mode, m.alert)
	}
}

func TestEditKeepsUnknownPriorityAtMedium(t *testing.T) {
	doc := &model.Document{Tasks: []model.Task{{ID: 1, Title: "Старая", Priority: "Срочно"}}}
	p := planner.New(doc, nil,
		planner.WithLocation(time.UTC),
		planner.WithClock(func() time.Time { return fixedNow }),
	)
	m := New(p, Options{CopyText: func(string) error { return nil }})

	m = send(m, runes("e"))
	if m.form == nil {
		t.Fatalf("edit form not opened: %+v", m.alert)
	}
	if got := m.form.get("priority"); got != string(model.PriorityMedium) {
		t.Errorf("priority choice = %q, want %q", got, model.PriorityMedium)
	}

	m = send(m, keySave)
	if task, _ := p.Task(1); task.Priority != model.PriorityMedium {
		t.Errorf("saved priority = %q", task.Priority)
	}
}
