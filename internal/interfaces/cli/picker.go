package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"plugup.dev/cli/internal/core/domain/catalog"
)

// pickerItem wraps one catalog entry for the checklist.
type pickerItem struct {
	plugin   catalog.Plugin
	selected bool
}

func (i *pickerItem) Title() string {
	box := "[ ]"
	if i.selected {
		box = "[x]"
	}
	return fmt.Sprintf("%s %s", box, i.plugin.Name)
}

func (i *pickerItem) Description() string {
	desc := i.plugin.Description
	if desc == "" {
		desc = "no description"
	}
	return fmt.Sprintf("%s · %s", i.plugin.Category, desc)
}

func (i *pickerItem) FilterValue() string {
	return i.plugin.Name + " " + i.plugin.Category
}

// pickerModel is the checklist program: space toggles, a toggles all, enter
// confirms, q/esc cancels.
type pickerModel struct {
	list      list.Model
	items     []*pickerItem
	confirmed bool
	canceled  bool
}

func newPickerModel(entries []catalog.Plugin) pickerModel {
	items := make([]*pickerItem, len(entries))
	listItems := make([]list.Item, len(entries))
	for i, p := range entries {
		items[i] = &pickerItem{plugin: p}
		listItems[i] = items[i]
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)

	l := list.New(listItems, delegate, 0, 0)
	l.Title = "Select plugins to install"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return pickerModel{list: l, items: items}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-2, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		// While the fuzzy filter is open, keys belong to it.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.canceled = true
			return m, tea.Quit
		case " ":
			if item, ok := m.list.SelectedItem().(*pickerItem); ok {
				item.selected = !item.selected
			}
			return m, nil
		case "a":
			all := m.allSelected()
			for _, item := range m.items {
				item.selected = !all
			}
			return m, nil
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	help := dimStyle.Render("space toggle · a toggle all · enter confirm · q cancel")
	return m.list.View() + "\n" + help
}

func (m pickerModel) allSelected() bool {
	for _, item := range m.items {
		if !item.selected {
			return false
		}
	}
	return len(m.items) > 0
}

// selection returns the chosen entries in catalog order.
func (m pickerModel) selection() []catalog.Plugin {
	var out []catalog.Plugin
	for _, item := range m.items {
		if item.selected {
			out = append(out, item.plugin)
		}
	}
	return out
}

// pickPlugins runs the checklist over the whole catalog. canceled is true
// when the user backed out or confirmed an empty selection.
func pickPlugins(cat catalog.Catalog) ([]catalog.Plugin, bool, error) {
	entries := cat.Plugins()
	if len(entries) == 0 {
		return nil, true, nil
	}

	program := tea.NewProgram(newPickerModel(entries), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return nil, false, err
	}

	model, ok := final.(pickerModel)
	if !ok {
		return nil, false, fmt.Errorf("unexpected picker model type %T", final)
	}
	if model.canceled || !model.confirmed {
		return nil, true, nil
	}

	picked := model.selection()
	if len(picked) == 0 {
		return nil, true, nil
	}
	return picked, false, nil
}
