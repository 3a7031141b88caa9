package live

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title        lipgloss.Style
	header       lipgloss.Style
	connected    lipgloss.Style
	disconnected lipgloss.Style
	errText      lipgloss.Style
	cursor       lipgloss.Style
	todo         lipgloss.Style
	done         lipgloss.Style
	empty        lipgloss.Style
	help         lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:        lipgloss.NewStyle().Bold(true),
		header:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		connected:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		disconnected: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		errText:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		cursor:       lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		todo:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		done:         lipgloss.NewStyle().Faint(true).Strikethrough(true),
		empty:        lipgloss.NewStyle().Faint(true),
		help:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
