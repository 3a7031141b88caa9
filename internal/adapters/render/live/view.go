package live

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderView(m Model) string {
	s := m.styles

	indicator := s.disconnected.Render("● offline")
	if m.connected {
		indicator = s.connected.Render("● live")
	}

	lines := []string{
		s.title.Render(m.room.Name) + "  " + indicator,
		s.header.Render(fmt.Sprintf("room id: %s", m.room.ID)),
	}

	if m.errText != "" {
		lines = append(lines, s.errText.Render(m.errText))
	}

	lines = append(lines, "")

	if len(m.todos) == 0 {
		lines = append(lines, s.empty.Render("No todos yet. Press 'a' to add the first one."))
	}
	for i, todo := range m.todos {
		cursor := "  "
		if i == m.cursor {
			cursor = s.cursor.Render("> ")
		}
		check := "[ ]"
		text := s.todo.Render(todo.Text)
		if todo.Completed {
			check = "[x]"
			text = s.done.Render(todo.Text)
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", cursor, check, text))
	}

	lines = append(lines, "")

	if m.mode == modeBrowse {
		lines = append(lines, s.help.Render("a add · e edit · space toggle · d delete · q quit"))
	} else {
		lines = append(lines, m.input.View(), s.help.Render("enter save · esc cancel"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
