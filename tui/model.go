// Package tui shows a single device panel in the terminal. Snapshots are
// delivered as SnapshotMsg through tea.Program.Send; commands leave through
// the ActionFunc given to New.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/elijahnyp/device_panels/panels"
	"github.com/elijahnyp/device_panels/state"
)

// ActionFunc sends a command to the device.
type ActionFunc func(action string, params map[string]any) error

// SnapshotMsg carries a new snapshot into the program.
type SnapshotMsg struct {
	Snapshot state.Snapshot
}

type actionResultMsg struct {
	err    error
	action string
}

// control is one focusable widget: an active button or a number input.
type control struct {
	button *panels.Button
	input  *panels.NumberInput
}

type Model struct {
	send      ActionFunc
	snap      state.Snapshot
	err       error
	device    string
	title     string
	status    string
	panel     panels.Panel
	controls  []control
	ui        panels.UIState
	cursor    int
	searching bool
	statusErr bool
}

// New builds the model for one device. title replaces the panel's own
// title when set.
func New(device, title string, send ActionFunc) Model {
	return Model{device: device, title: title, send: send}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.snap = msg.Snapshot
		m.rerender()
		return m, nil
	case actionResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			m.statusErr = true
		} else {
			m.status = msg.action + " sent"
			m.statusErr = false
		}
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateNavigation(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
	case tea.KeyBackspace:
		if r := []rune(m.ui.Search); len(r) > 0 {
			m.ui.Search = string(r[:len(r)-1])
			m.rerender()
		}
	case tea.KeyRunes, tea.KeySpace:
		m.ui.Search += string(msg.Runes)
		m.rerender()
	}
	return m, nil
}

func (m Model) updateNavigation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j", "tab":
		if m.cursor < len(m.controls)-1 {
			m.cursor++
		}
	case "/":
		if m.hasSearch() {
			m.searching = true
		}
	case "enter", " ":
		if c, ok := m.focused(); ok && c.button != nil {
			return m.press(*c.button)
		}
	case "+", "=", "right", "l":
		return m.adjust(1)
	case "-", "left", "h":
		return m.adjust(-1)
	case "]":
		return m.adjust(5)
	case "[":
		return m.adjust(-5)
	}
	return m, nil
}

func (m Model) focused() (control, bool) {
	if m.cursor < 0 || m.cursor >= len(m.controls) {
		return control{}, false
	}
	return m.controls[m.cursor], true
}

func (m Model) hasSearch() bool {
	for _, s := range m.panel.Sections {
		if s.Search != nil {
			return true
		}
	}
	return false
}

func (m Model) press(b panels.Button) (tea.Model, tea.Cmd) {
	if !b.Active() {
		return m, nil
	}
	if b.Local != "" {
		m.ui = m.ui.Toggle(b.Local)
		m.rerender()
		return m, nil
	}
	return m, m.dispatch(*b.Action)
}

// adjust moves the focused number input by steps of a twentieth of its
// range and sends the new value.
func (m Model) adjust(steps int) (tea.Model, tea.Cmd) {
	c, ok := m.focused()
	if !ok || c.input == nil {
		return m, nil
	}
	in := *c.input
	step := (in.Max - in.Min) / 20
	if step < 1 {
		step = 1
	}
	next := in.Clamp(in.Value + float64(steps)*step)
	if next == in.Value {
		return m, nil
	}
	return m, m.dispatch(in.Change(next))
}

func (m Model) dispatch(a panels.Action) tea.Cmd {
	send := m.send
	return func() tea.Msg {
		if send == nil {
			return actionResultMsg{action: a.Name, err: fmt.Errorf("read only")}
		}
		return actionResultMsg{action: a.Name, err: send(a.Name, a.Params)}
	}
}

func (m *Model) rerender() {
	if m.snap == nil {
		return
	}
	panel, err := panels.Render(m.snap, m.ui)
	m.err = err
	if err != nil {
		return
	}
	if m.title != "" {
		panel.Title = m.title
	}
	m.panel = panel
	m.controls = collectControls(panel)
	if m.cursor >= len(m.controls) {
		m.cursor = len(m.controls) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// collectControls lists focusable widgets in the order View draws them.
func collectControls(p panels.Panel) []control {
	var out []control
	walkControls(p, func(c control) { out = append(out, c) })
	return out
}

func walkControls(p panels.Panel, fn func(control)) {
	for _, s := range p.Sections {
		for i := range s.Buttons {
			if s.Buttons[i].Active() {
				fn(control{button: &s.Buttons[i]})
			}
		}
		for _, it := range s.Items {
			if it.Input != nil {
				fn(control{input: it.Input})
			}
			for i := range it.Buttons {
				if it.Buttons[i].Active() {
					fn(control{button: &it.Buttons[i]})
				}
			}
		}
		if s.Table == nil {
			continue
		}
		for _, row := range s.Table.Rows {
			for _, cell := range row.Cells {
				if cell.Button != nil && cell.Button.Active() {
					fn(control{button: cell.Button})
				}
				if cell.Input != nil {
					fn(control{input: cell.Input})
				}
			}
		}
	}
}
