package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "161", Dark: "205"}
	muted  = lipgloss.AdaptiveColor{Light: "245", Dark: "240"}

	titleStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(muted)

	challengeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			MarginTop(1)

	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)
