package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("69")
	colorMuted  = lipgloss.Color("241")
	colorError  = lipgloss.Color("196")
	colorOK     = lipgloss.Color("42")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(colorAccent).
			Padding(0, 1)
	tabStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	okStyle    = lipgloss.NewStyle().Foreground(colorOK)

	errorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Padding(0, 1)
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)
	helpStyle = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
)
