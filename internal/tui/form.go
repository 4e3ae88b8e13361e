package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"dayplanner/internal/planner"
)

// FieldKind selects the widget backing a form field.
type FieldKind int

const (
	LineField FieldKind = iota
	TextField
	ChoiceField
)

type field struct {
	name  string
	label string
	kind  FieldKind

	input   textinput.Model
	area    textarea.Model
	options []string
	choice  int
}

func lineField(name, label, value, placeholder string) field {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 200
	ti.Width = 40
	ti.Placeholder = placeholder
	ti.SetValue(value)
	return field{name: name, label: label, kind: LineField, input: ti}
}

func textField(name, label, value string) field {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.SetWidth(44)
	ta.SetHeight(4)
	ta.CharLimit = 0
	ta.SetValue(value)
	return field{name: name, label: label, kind: TextField, area: ta}
}

func choiceField(name, label string, options []string, value string) field {
	f := field{name: name, label: label, kind: ChoiceField, options: options}
	for i, o := range options {
		if o == value {
			f.choice = i
		}
	}
	return f
}

func (f *field) value() string {
	switch f.kind {
	case TextField:
		return f.area.Value()
	case ChoiceField:
		return f.options[f.choice]
	default:
		return f.input.Value()
	}
}

func (f *field) focus() tea.Cmd {
	switch f.kind {
	case TextField:
		return f.area.Focus()
	case LineField:
		return f.input.Focus()
	}
	return nil
}

func (f *field) blur() {
	switch f.kind {
	case TextField:
		f.area.Blur()
	case LineField:
		f.input.Blur()
	}
}

func (f *field) cycle(delta int) {
	n := len(f.options)
	f.choice = ((f.choice+delta)%n + n) % n
}

func (f *field) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.kind {
	case TextField:
		f.area, cmd = f.area.Update(msg)
	case LineField:
		f.input, cmd = f.input.Update(msg)
	}
	return cmd
}

func (f *field) view(focused bool) string {
	label := labelStyle.Render(f.label)
	if focused {
		label = focusedLabelStyle.Render(f.label)
	}
	var body string
	switch f.kind {
	case TextField:
		body = f.area.View()
	case ChoiceField:
		body = "‹ " + f.options[f.choice] + " ›"
	default:
		body = f.input.View()
	}
	return label + "\n" + body
}

// form is a modal add/edit dialog. id is zero when adding.
type form struct {
	title  string
	kind   planner.Kind
	id     int
	fields []field
	focus  int
	keys   formKeyMap
}

func newForm(title string, kind planner.Kind, id int, fields ...field) *form {
	f := &form{title: title, kind: kind, id: id, fields: fields, keys: defaultFormKeyMap()}
	f.fields[0].focus()
	return f
}

// get returns the raw value of the named field.
func (f *form) get(name string) string {
	for i := range f.fields {
		if f.fields[i].name == name {
			return f.fields[i].value()
		}
	}
	return ""
}

func (f *form) move(delta int) tea.Cmd {
	f.fields[f.focus].blur()
	n := len(f.fields)
	f.focus = ((f.focus+delta)%n + n) % n
	return f.fields[f.focus].focus()
}

// formResult tells the model what the user asked for.
type formResult int

const (
	formEditing formResult = iota
	formSubmit
	formCancel
)

func (f *form) update(msg tea.KeyMsg) (formResult, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keys.Cancel):
		return formCancel, nil
	case key.Matches(msg, f.keys.Save):
		return formSubmit, nil
	case key.Matches(msg, f.keys.Next):
		return formEditing, f.move(1)
	case key.Matches(msg, f.keys.Prev):
		return formEditing, f.move(-1)
	}

	cur := &f.fields[f.focus]
	if cur.kind == ChoiceField {
		switch msg.String() {
		case "left":
			cur.cycle(-1)
		case "right", " ":
			cur.cycle(1)
		}
		return formEditing, nil
	}
	return formEditing, cur.update(msg)
}

func (f *form) view() string {
	parts := []string{dialogTitleStyle.Render(f.title)}
	for i := range f.fields {
		parts = append(parts, f.fields[i].view(i == f.focus))
	}
	return dialogStyle.Render(strings.Join(parts, "\n\n"))
}
