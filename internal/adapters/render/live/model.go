// Package live renders the open room's todo list as an interactive bubbletea
// view that follows realtime changes from other room members.
package live

import (
	"context"
	"time"

	"github.com/bnema/roomtodo/internal/application"
	"github.com/bnema/roomtodo/internal/domain"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ListChangedMsg is sent into the program whenever the controller's
// collection changes, from any source.
type ListChangedMsg struct{}

type tickMsg time.Time

type opResultMsg struct {
	err error
}

type mode int

const (
	modeBrowse mode = iota
	modeInsert
	modeEdit
)

const indicatorInterval = time.Second

type Model struct {
	controller *application.Controller
	room       domain.Room
	todos      []domain.Todo
	cursor     int
	input      textinput.Model
	mode       mode
	editing    domain.TodoID
	errText    string
	connected  bool
	styles     styles
}

func NewModel(controller *application.Controller, room domain.Room) Model {
	input := textinput.New()
	input.Placeholder = "What needs to be done?"
	input.CharLimit = domain.MaxTodoTextLength

	return Model{
		controller: controller,
		room:       room,
		todos:      controller.Todos(),
		input:      input,
		styles:     newStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return tickIndicator()
}

func tickIndicator() tea.Cmd {
	return tea.Tick(indicatorInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ListChangedMsg:
		m.todos = m.controller.Todos()
		m.clampCursor()
		return m, nil
	case tickMsg:
		m.connected = m.controller.Connected()
		return m, tickIndicator()
	case opResultMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.errText = ""
		}
		m.todos = m.controller.Todos()
		m.clampCursor()
		return m, nil
	case tea.KeyMsg:
		if m.mode == modeBrowse {
			return m.updateBrowse(msg)
		}
		return m.updateInput(msg)
	default:
		return m, nil
	}
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.todos)-1 {
			m.cursor++
		}
	case "a":
		m.mode = modeInsert
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "e":
		if todo, ok := m.selected(); ok {
			m.mode = modeEdit
			m.editing = todo.ID
			m.input.SetValue(todo.Text)
			m.input.Focus()
			return m, textinput.Blink
		}
	case " ", "enter":
		if todo, ok := m.selected(); ok {
			return m, m.toggleCmd(todo.ID)
		}
	case "d":
		if todo, ok := m.selected(); ok {
			return m, m.removeCmd(todo.ID)
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		text := m.input.Value()
		editing := m.editing
		isEdit := m.mode == modeEdit
		m.mode = modeBrowse
		m.editing = ""
		m.input.Blur()
		if isEdit {
			return m, m.editCmd(editing, text)
		}
		return m, m.addCmd(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) addCmd(text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.controller.AddTodo(context.Background(), text)
		return opResultMsg{err: err}
	}
}

func (m Model) editCmd(id domain.TodoID, text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.controller.EditTodo(context.Background(), id, text)
		return opResultMsg{err: err}
	}
}

func (m Model) toggleCmd(id domain.TodoID) tea.Cmd {
	return func() tea.Msg {
		_, err := m.controller.ToggleTodo(context.Background(), id)
		return opResultMsg{err: err}
	}
}

func (m Model) removeCmd(id domain.TodoID) tea.Cmd {
	return func() tea.Msg {
		return opResultMsg{err: m.controller.RemoveTodo(context.Background(), id)}
	}
}

func (m Model) selected() (domain.Todo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.todos) {
		return domain.Todo{}, false
	}
	return m.todos[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.todos) {
		m.cursor = len(m.todos) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	return renderView(m)
}
