package planner

import (
	"slices"
	"strings"

	appLog "dayplanner/internal/log"
	"dayplanner/internal/model"
)

// TaskInput carries raw form values; every field is validated and
// normalized by AddTask/EditTask.
type TaskInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     string

	// Completed, when set, overrides the completion flag on edit. It is
	// ignored by AddTask.
	Completed *bool
}

type TaskFilter string

const (
	TaskAll          TaskFilter = "all"
	TaskActive       TaskFilter = "active"
	TaskCompleted    TaskFilter = "completed"
	TaskHighPriority TaskFilter = "high"
)

// TaskFilters is the display/cycling order.
var TaskFilters = []TaskFilter{TaskAll, TaskActive, TaskCompleted, TaskHighPriority}

var taskFilterLabels = map[TaskFilter]string{
	TaskAll:          "Все",
	TaskActive:       "Активные",
	TaskCompleted:    "Завершенные",
	TaskHighPriority: "Высокий приоритет",
}

func (f TaskFilter) Label() string {
	if l, ok := taskFilterLabels[f]; ok {
		return l
	}
	return string(f)
}

func ParseTaskFilter(s string) (TaskFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TaskAll, nil
	}
	for _, f := range TaskFilters {
		if s == string(f) || s == strings.ToLower(f.Label()) {
			return f, nil
		}
	}
	return "", invalid("filter", "Неизвестный фильтр задач: "+s)
}

func (f TaskFilter) keep(t model.Task) bool {
	switch f {
	case TaskActive:
		return !t.Completed
	case TaskCompleted:
		return t.Completed
	case TaskHighPriority:
		return t.Priority == model.PriorityHigh
	default:
		return true
	}
}

func validateTask(in TaskInput) (model.Task, error) {
	title, err := requireTitle(in.Title, "Название задачи обязательно!")
	if err != nil {
		return model.Task{}, err
	}
	prio, err := model.ParsePriority(in.Priority)
	if err != nil {
		return model.Task{}, invalid("priority", "Неизвестный приоритет! Допустимо: Низкий, Средний, Высокий")
	}
	var due *string
	if strings.TrimSpace(in.DueDate) != "" {
		d, err := parseDate("due_date", in.DueDate)
		if err != nil {
			return model.Task{}, err
		}
		due = &d
	}
	return model.Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    prio,
		DueDate:     due,
	}, nil
}

func (p *Planner) AddTask(in TaskInput) (model.Task, error) {
	task, err := validateTask(in)
	if err != nil {
		return model.Task{}, err
	}

	maxID := 0
	for _, t := range p.doc.Tasks {
		maxID = max(maxID, t.ID)
	}
	task.ID = p.nextID(KindTask, maxID)
	task.CreatedAt = p.timestamp()
	task.UpdatedAt = task.CreatedAt

	p.doc.Tasks = append(p.doc.Tasks, task)
	appLog.Info("task added", "id", task.ID, "title", task.Title)
	return task, p.save()
}

func (p *Planner) taskIndex(id int) (int, error) {
	i := slices.IndexFunc(p.doc.Tasks, func(t model.Task) bool { return t.ID == id })
	if i < 0 {
		return -1, &NotFoundError{Kind: KindTask, ID: id}
	}
	return i, nil
}

// Task returns a copy of the task with the given id.
func (p *Planner) Task(id int) (model.Task, error) {
	i, err := p.taskIndex(id)
	if err != nil {
		return model.Task{}, err
	}
	return p.doc.Tasks[i], nil
}

// EditTask replaces the editable fields; id and created_at are preserved,
// completion only changes when in.Completed is set.
func (p *Planner) EditTask(id int, in TaskInput) (model.Task, error) {
	i, err := p.taskIndex(id)
	if err != nil {
		return model.Task{}, err
	}
	upd, err := validateTask(in)
	if err != nil {
		return model.Task{}, err
	}

	t := &p.doc.Tasks[i]
	t.Title = upd.Title
	t.Description = upd.Description
	t.Priority = upd.Priority
	t.DueDate = upd.DueDate
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	t.UpdatedAt = p.timestamp()

	appLog.Info("task edited", "id", id)
	return *t, p.save()
}

func (p *Planner) CompleteTask(id int) (model.Task, error) {
	i, err := p.taskIndex(id)
	if err != nil {
		return model.Task{}, err
	}
	t := &p.doc.Tasks[i]
	t.Completed = true
	t.UpdatedAt = p.timestamp()

	appLog.Info("task completed", "id", id)
	return *t, p.save()
}

func (p *Planner) DeleteTask(id int) error {
	i, err := p.taskIndex(id)
	if err != nil {
		return err
	}
	p.doc.Tasks = slices.Delete(p.doc.Tasks, i, i+1)

	appLog.Info("task deleted", "id", id)
	return p.save()
}

// ListTasks filters and searches tasks, ordered by due date ascending with
// undated tasks last. Ties keep insertion order.
func (p *Planner) ListTasks(filter TaskFilter, search string) []model.Task {
	out := make([]model.Task, 0, len(p.doc.Tasks))
	for _, t := range p.doc.Tasks {
		if !filter.keep(t) || !matches(search, t.Title, t.Description) {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b model.Task) int {
		return strings.Compare(dueSortKey(a), dueSortKey(b))
	})
	return out
}

func dueSortKey(t model.Task) string {
	if !t.HasDueDate() {
		return "9999-99-99"
	}
	return *t.DueDate
}
