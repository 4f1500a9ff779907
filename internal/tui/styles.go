package tui

import (
	"github.com/charmbracelet/lipgloss"

	"shopping-list/internal/models"
)

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	accent   lipgloss.Style
	success  lipgloss.Style
	pending  lipgloss.Style
	errorBar lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
	help     lipgloss.Style
	panel    lipgloss.Style
	input    lipgloss.Style
}

const (
	boxChecked   = "☑"
	boxUnchecked = "☐"
)

func stylesFor(theme models.Theme) styles {
	fg, border, accent := lipgloss.Color("0"), lipgloss.Color("8"), lipgloss.Color("12")
	if theme == models.ThemeDark {
		fg, border, accent = lipgloss.Color("15"), lipgloss.Color("240"), lipgloss.Color("111")
	}

	s := styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(fg),
		muted:    lipgloss.NewStyle().Faint(true),
		accent:   lipgloss.NewStyle().Foreground(accent),
		success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		errorBar: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")).Bold(true).Padding(0, 1),
		selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		help:     lipgloss.NewStyle().Faint(true),
		panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		input:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
	}
	if theme == models.ThemeDark {
		s.panel = s.panel.Background(lipgloss.Color("235"))
	}
	return s
}
