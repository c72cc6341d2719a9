package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	case constants.StateHelp:
		content = subtleStyle.Render("Press any key to return.")
	default:
		content = m.viewToday()
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m.keys),
	))
}

func (m Model) viewHeader() string {
	now := m.tracker.Now()
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleStyle.Render("Hoy, "+now.Format("Monday 02 Jan")),
		subtleStyle.Render("  "+now.Format("03:04 PM")),
	)
}

func (m Model) viewToday() string {
	progress := fmt.Sprintf("Semana %s %s", cli.ProgressBar(m.weekly, 20), cli.Percent(m.weekly))

	parts := []string{m.timeline.View(), "", progress}
	if m.challenge != nil {
		text := fmt.Sprintf("Reto del día: %s %s", m.challenge.Icon, m.challenge.Title)
		if m.challenge.Desc != "" {
			text += "\n" + subtleStyle.Render(m.challenge.Desc)
		}
		parts = append(parts, challengeStyle.Render(text))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewStatus() string {
	switch {
	case m.errMsg != "":
		return warningStyle.Render(m.errMsg)
	case m.status != "":
		return statusStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewConfirmDelete() string {
	title := m.habitToDelete
	if h, ok := m.tracker.Habit(m.habitToDelete); ok {
		title = h.Title
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		dangerStyle.Render(fmt.Sprintf("Delete %q and all of its completions?", title)),
		"",
		"[y] Yes",
		"[n] No",
	)
}
