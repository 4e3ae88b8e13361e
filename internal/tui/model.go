// Package tui is the Bubble Tea front end: one tab per collection plus a
// statistics tab, modal add/edit forms and confirmation dialogs.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robfig/cron/v3"

	appLog "dayplanner/internal/log"
	"dayplanner/internal/planner"
)

type Tab int

const (
	TasksTab Tab = iota
	EventsTab
	NotesTab
	StatsTab
)

var tabTitles = [...]string{"Задачи", "События", "Заметки", "Статистика"}

func (t Tab) String() string { return tabTitles[t] }

// ViewMode decides which component receives key presses.
type ViewMode int

const (
	BrowseView ViewMode = iota
	SearchView
	FormView
	ConfirmView
	AlertView
)

const defaultTableHeight = 15

// Options configures New.
type Options struct {
	// DayRollover is a standard cron expression; each time it fires the
	// views are rebuilt so Upcoming/Past follow the calendar. Empty
	// disables the refresh.
	DayRollover string

	// CopyText replaces the system clipboard, mainly for tests.
	CopyText func(string) error
}

type alert struct {
	title string
	body  string
	isErr bool
	back  ViewMode
}

type confirm struct {
	question string
	kind     planner.Kind
	id       int
}

type statusMsg string

// rolloverMsg is delivered when the day-rollover schedule fires.
type rolloverMsg time.Time

// Model is the application state.
type Model struct {
	planner *planner.Planner

	activeTab Tab
	mode      ViewMode
	tables    [3]table.Model
	search    [3]textinput.Model

	taskFilter  planner.TaskFilter
	eventFilter planner.EventFilter

	form    *form
	alert   alert
	confirm confirm
	status  string

	schedule cron.Schedule
	copyText func(string) error

	keys   KeyMap
	help   help.Model
	width  int
	height int
}

func New(p *planner.Planner, opts Options) Model {
	m := Model{
		planner:     p,
		taskFilter:  planner.TaskAll,
		eventFilter: planner.EventAll,
		copyText:    opts.CopyText,
		keys:        DefaultKeyMap(),
		help:        help.New(),
	}
	if m.copyText == nil {
		m.copyText = clipboard.WriteAll
	}
	if opts.DayRollover != "" {
		sched, err := cron.ParseStandard(opts.DayRollover)
		if err != nil {
			appLog.Error("tui: day rollover disabled", err, "spec", opts.DayRollover)
		} else {
			m.schedule = sched
		}
	}

	columns := [3][]table.Column{
		{
			{Title: "ID", Width: 4},
			{Title: "Название", Width: 30},
			{Title: "Приоритет", Width: 10},
			{Title: "Срок", Width: 10},
			{Title: "Статус", Width: 10},
		},
		{
			{Title: "ID", Width: 4},
			{Title: "Название", Width: 30},
			{Title: "Дата", Width: 10},
			{Title: "Время", Width: 9},
			{Title: "Напоминание", Width: 12},
		},
		{
			{Title: "ID", Width: 4},
			{Title: "Название", Width: 34},
			{Title: "Создана", Width: 16},
			{Title: "Изменена", Width: 16},
		},
	}
	styles := tableStyles()
	for i := range m.tables {
		m.tables[i] = table.New(
			table.WithColumns(columns[i]),
			table.WithFocused(true),
			table.WithHeight(defaultTableHeight),
		)
		m.tables[i].SetStyles(styles)

		ti := textinput.New()
		ti.Prompt = "Поиск: "
		ti.Placeholder = "введите текст"
		ti.CharLimit = 100
		ti.Width = 30
		m.search[i] = ti
	}

	m.refresh()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.scheduleRollover(time.Now())
}

func (m Model) scheduleRollover(now time.Time) tea.Cmd {
	if m.schedule == nil {
		return nil
	}
	next := m.schedule.Next(now.In(m.planner.Location()))
	return tea.Tick(next.Sub(now), func(t time.Time) tea.Msg {
		return rolloverMsg(t)
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h := max(msg.Height-10, 5)
		for i := range m.tables {
			m.tables[i].SetHeight(h)
		}
		return m, nil

	case rolloverMsg:
		appLog.Debug("tui: day rollover", "today", m.planner.Today())
		m.refresh()
		return m, m.scheduleRollover(time.Time(msg))

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case AlertView:
			return m.updateAlert(msg)
		case ConfirmView:
			return m.updateConfirm(msg)
		case FormView:
			return m.updateForm(msg)
		case SearchView:
			return m.updateSearch(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		m.activeTab = (m.activeTab + 1) % Tab(len(tabTitles))
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.activeTab = (m.activeTab + Tab(len(tabTitles)) - 1) % Tab(len(tabTitles))
		m.refresh()
		return m, nil
	}

	if m.activeTab == StatsTab {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Filter):
		m.cycleFilter()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = SearchView
		return m, m.search[m.activeTab].Focus()

	case key.Matches(msg, m.keys.Add):
		return m.openAddForm()

	case key.Matches(msg, m.keys.Edit):
		return m.openEditForm()

	case key.Matches(msg, m.keys.Delete):
		return m.askDelete()

	case key.Matches(msg, m.keys.Complete):
		if m.activeTab == TasksTab {
			return m.completeSelected()
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if m.activeTab == NotesTab {
			return m.copySelectedNote()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.tables[m.activeTab], cmd = m.tables[m.activeTab].Update(msg)
	return m, cmd
}

// updateSearch feeds the search box; the list follows every keystroke.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.search[m.activeTab].Blur()
		m.mode = BrowseView
		return m, nil
	}
	var cmd tea.Cmd
	m.search[m.activeTab], cmd = m.search[m.activeTab].Update(msg)
	m.refresh()
	return m, cmd
}

func (m Model) updateAlert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", " ", "q":
		m.mode = m.alert.back
		m.alert = alert{}
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y", "д", "enter":
		c := m.confirm
		m.confirm = confirm{}
		m.mode = BrowseView
		m.apply(deleteRecord(m.planner, c.kind, c.id))
	case "n", "н", "esc":
		m.confirm = confirm{}
		m.mode = BrowseView
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	res, cmd := m.form.update(msg)
	switch res {
	case formCancel:
		m.form = nil
		m.mode = BrowseView
		return m, nil
	case formSubmit:
		return m.submitForm()
	}
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	err := submit(m.planner, m.form)
	if err != nil && errors.Is(err, planner.ErrValidation) {
		// The form stays open with its input intact.
		m.showError(err, FormView)
		return m, nil
	}
	m.form = nil
	m.mode = BrowseView
	m.apply(err)
	return m, nil
}

// apply refreshes all views after a mutation and surfaces its error.
func (m *Model) apply(err error) {
	m.refresh()
	if err != nil {
		m.showError(err, BrowseView)
	}
}

func (m *Model) showError(err error, back ViewMode) {
	m.alert = alert{title: "Ошибка", body: err.Error(), isErr: true, back: back}
	m.mode = AlertView
}

func (m *Model) warn(body string) {
	m.alert = alert{title: "Предупреждение", body: body, back: BrowseView}
	m.mode = AlertView
}

func (m *Model) cycleFilter() {
	switch m.activeTab {
	case TasksTab:
		m.taskFilter = nextOf(planner.TaskFilters, m.taskFilter)
	case EventsTab:
		m.eventFilter = nextOf(planner.EventFilters, m.eventFilter)
	}
	m.refresh()
}

func nextOf[T comparable](all []T, cur T) T {
	for i, v := range all {
		if v == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// selectedID returns the id in the first column of the highlighted row.
func (m Model) selectedID() (int, bool) {
	row := m.tables[m.activeTab].SelectedRow()
	if row == nil {
		return 0, false
	}
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return 0, false
	}
	return id, true
}

// selectionWarning follows the "Выберите задачу для ..." wording.
func selectionWarning(tab Tab, action string) string {
	obj := map[Tab]string{TasksTab: "задачу", EventsTab: "событие", NotesTab: "заметку"}[tab]
	return fmt.Sprintf("Выберите %s для %s", obj, action)
}

func (m Model) openAddForm() (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case TasksTab:
		m.form = taskForm(0, nil)
	case EventsTab:
		m.form = eventForm(0, nil, m.planner.Today())
	case NotesTab:
		m.form = noteForm(0, nil)
	}
	m.mode = FormView
	return m, textinput.Blink
}

func (m Model) openEditForm() (tea.Model, tea.Cmd) {
	id, ok := m.selectedID()
	if !ok {
		m.warn(selectionWarning(m.activeTab, "редактирования"))
		return m, nil
	}

	var err error
	switch m.activeTab {
	case TasksTab:
		t, e := m.planner.Task(id)
		if err = e; err == nil {
			m.form = taskForm(id, &t)
		}
	case EventsTab:
		ev, e := m.planner.Event(id)
		if err = e; err == nil {
			m.form = eventForm(id, &ev, m.planner.Today())
		}
	case NotesTab:
		n, e := m.planner.Note(id)
		if err = e; err == nil {
			m.form = noteForm(id, &n)
		}
	}
	if err != nil {
		m.showError(err, BrowseView)
		return m, nil
	}
	m.mode = FormView
	return m, textinput.Blink
}

func (m Model) askDelete() (tea.Model, tea.Cmd) {
	id, ok := m.selectedID()
	if !ok {
		m.warn(selectionWarning(m.activeTab, "удаления"))
		return m, nil
	}
	questions := map[Tab]string{
		TasksTab:  "Вы уверены, что хотите удалить эту задачу?",
		EventsTab: "Вы уверены, что хотите удалить это событие?",
		NotesTab:  "Вы уверены, что хотите удалить эту заметку?",
	}
	kinds := map[Tab]planner.Kind{TasksTab: planner.KindTask, EventsTab: planner.KindEvent, NotesTab: planner.KindNote}

	m.confirm = confirm{question: questions[m.activeTab], kind: kinds[m.activeTab], id: id}
	m.mode = ConfirmView
	return m, nil
}

func (m Model) completeSelected() (tea.Model, tea.Cmd) {
	id, ok := m.selectedID()
	if !ok {
		m.warn(selectionWarning(TasksTab, "отметки"))
		return m, nil
	}
	_, err := m.planner.CompleteTask(id)
	m.apply(err)
	return m, nil
}

func (m Model) copySelectedNote() (tea.Model, tea.Cmd) {
	id, ok := m.selectedID()
	if !ok {
		m.warn(selectionWarning(NotesTab, "копирования"))
		return m, nil
	}
	n, err := m.planner.Note(id)
	if err != nil {
		m.showError(err, BrowseView)
		return m, nil
	}
	copyText := m.copyText
	return m, func() tea.Msg {
		if err := copyText(n.Content); err != nil {
			appLog.Error("tui: clipboard copy failed", err, "id", n.ID)
			return statusMsg("Не удалось скопировать: " + err.Error())
		}
		return statusMsg("Скопировано: " + n.Title)
	}
}

// refresh rebuilds every table from the current List results.
func (m *Model) refresh() {
	m.setRows(TasksTab, taskRows(m.planner.ListTasks(m.taskFilter, m.search[TasksTab].Value())))
	m.setRows(EventsTab, eventRows(m.planner.ListEvents(m.eventFilter, m.search[EventsTab].Value())))
	m.setRows(NotesTab, noteRows(m.planner.ListNotes(m.search[NotesTab].Value())))
}

// setRows replaces a table's rows and keeps the cursor on a row. An empty
// table leaves the cursor alone: SetCursor would clamp it to -1.
func (m *Model) setRows(t Tab, rows []table.Row) {
	tbl := &m.tables[t]
	tbl.SetRows(rows)
	switch c := tbl.Cursor(); {
	case len(rows) == 0:
	case c < 0:
		tbl.SetCursor(0)
	case c >= len(rows):
		tbl.SetCursor(len(rows) - 1)
	}
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("День студента"))
	b.WriteString("\n\n")

	tabs := make([]string, 0, len(tabTitles))
	for i, name := range tabTitles {
		if Tab(i) == m.activeTab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	switch m.mode {
	case FormView:
		b.WriteString(m.form.view())
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.form.keys))
		return b.String()
	case AlertView:
		style := dialogStyle
		if m.alert.isErr {
			style = errorDialogStyle
		}
		b.WriteString(style.Render(dialogTitleStyle.Render(m.alert.title) + "\n" + m.alert.body))
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("enter: закрыть"))
		return b.String()
	case ConfirmView:
		b.WriteString(dialogStyle.Render(dialogTitleStyle.Render("Подтверждение") + "\n" + m.confirm.question))
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("y: да, n: нет"))
		return b.String()
	}

	if m.activeTab == StatsTab {
		b.WriteString(m.statsView())
	} else {
		b.WriteString(m.filterLine())
		b.WriteString("\n")
		b.WriteString(m.search[m.activeTab].View())
		b.WriteString("\n\n")
		b.WriteString(m.tables[m.activeTab].View())
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) filterLine() string {
	switch m.activeTab {
	case TasksTab:
		return labelStyle.Render("Фильтр: ") + m.taskFilter.Label()
	case EventsTab:
		return labelStyle.Render("Фильтр: ") + m.eventFilter.Label()
	}
	return ""
}

// statsView recomputes the counts on every render.
func (m Model) statsView() string {
	s := m.planner.Stats()
	lines := []string{
		statsHeadingStyle.Render("Статистика задач"),
		fmt.Sprintf("Всего задач: %d", s.Tasks.Total),
		fmt.Sprintf("Завершено: %d", s.Tasks.Completed),
		fmt.Sprintf("Активных: %d", s.Tasks.Active),
		fmt.Sprintf("Высокий приоритет: %d", s.Tasks.HighPriority),
		statsHeadingStyle.Render("Статистика событий"),
		fmt.Sprintf("Всего событий: %d", s.Events.Total),
		fmt.Sprintf("Предстоящие: %d", s.Events.Upcoming),
		fmt.Sprintf("Прошедшие: %d", s.Events.Past),
		statsHeadingStyle.Render("Статистика заметок"),
		fmt.Sprintf("Всего заметок: %d", s.Notes.Total),
	}
	return strings.Join(lines, "\n")
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(p *planner.Planner, opts Options) error {
	_, err := tea.NewProgram(New(p, opts), tea.WithAltScreen()).Run()
	return err
}
