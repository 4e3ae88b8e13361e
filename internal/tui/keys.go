package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the browse-mode key bindings. Row navigation is handled
// by the table's own key map.
type KeyMap struct {
	NextTab  key.Binding
	PrevTab  key.Binding
	Filter   key.Binding
	Search   key.Binding
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Complete key.Binding
	Copy     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right"),
			key.WithHelp("tab", "след. вкладка"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left"),
			key.WithHelp("shift+tab", "пред. вкладка"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "фильтр"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "поиск"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "добавить"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "редактировать"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "удалить"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "выполнено"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "копировать"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "справка"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "выход"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Add, k.Edit, k.Delete, k.Filter, k.Search, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Filter, k.Search},
		{k.Add, k.Edit, k.Delete, k.Complete, k.Copy},
		{k.Help, k.Quit},
	}
}

// formKeyMap is active while an add/edit form is open.
type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Cycle  key.Binding
	Save   key.Binding
	Cancel key.Binding
}

func defaultFormKeyMap() formKeyMap {
	return formKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "след. поле"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "пред. поле"),
		),
		Cycle: key.NewBinding(
			key.WithKeys("left", "right", " "),
			key.WithHelp("←/→", "выбор"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "сохранить"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "отмена"),
		),
	}
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Cycle, k.Save, k.Cancel}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
