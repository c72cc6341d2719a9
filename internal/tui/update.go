package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/smartsteps/internal/constants"
)

var errSnoozeOffset = errors.New("habits scheduled after the first completion cannot be snoozed")

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.timeline.SetSize(msg.Width, msg.Height-6)
		return m, nil
	case TickMsg:
		m.refresh()
		return m, tick()
	case tea.KeyMsg:
		switch m.state {
		case constants.StateConfirmDelete:
			return m.updateConfirmDelete(msg)
		case constants.StateHelp:
			m.state = constants.StateToday
			m.help.ShowAll = false
			return m, nil
		}
		return m.updateToday(msg)
	}
	return m, nil
}

func (m Model) updateToday(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.state = constants.StateHelp
		m.help.ShowAll = true
		return m, nil
	case key.Matches(msg, m.keys.Increment):
		m.increment()
		return m, nil
	case key.Matches(msg, m.keys.Snooze):
		m.snooze(10)
		return m, nil
	case key.Matches(msg, m.keys.SnoozeMore):
		m.snooze(30)
		return m, nil
	case key.Matches(msg, m.keys.SnoozeLong):
		m.snooze(60)
		return m, nil
	case key.Matches(msg, m.keys.Challenge):
		m.acceptChallenge()
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if it, ok := m.timeline.Selected(); ok {
			m.habitToDelete = it.Habit.ID
			m.state = constants.StateConfirmDelete
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.timeline, cmd = m.timeline.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.deleteHabit(m.habitToDelete)
	case key.Matches(msg, m.keys.Cancel):
	default:
		return m, nil
	}
	m.habitToDelete = ""
	m.state = constants.StateToday
	return m, nil
}

func (m *Model) increment() {
	it, ok := m.timeline.Selected()
	if !ok {
		return
	}
	count := m.tracker.Increment(it.Habit.ID)
	if count == it.Count {
		m.status = fmt.Sprintf("%s is already done today", it.Habit.Title)
		return
	}
	m.persist(fmt.Sprintf("%s %s (%d/%d)", it.Habit.Icon, it.Habit.Title, count, it.Required))
}

func (m *Model) snooze(minutes int) {
	it, ok := m.timeline.Selected()
	if !ok {
		return
	}
	if !it.Habit.IsExact() {
		m.setError(errSnoozeOffset)
		return
	}
	h, err := m.tracker.Snooze(it.Habit.ID, minutes)
	if err != nil {
		m.setError(err)
		return
	}
	m.persist(fmt.Sprintf("Snoozed %s: %s → %s", h.Title, it.Habit.ExactTime, h.ExactTime))
}

func (m *Model) acceptChallenge() {
	if m.challenge == nil {
		return
	}
	h, err := m.tracker.AddSuggested(m.challenge.ID)
	if err != nil {
		m.setError(err)
		return
	}
	m.persist(fmt.Sprintf("Reto aceptado: %s %s", h.Icon, h.Title))
}

func (m *Model) deleteHabit(id string) {
	h, ok := m.tracker.Habit(id)
	if !ok {
		return
	}
	m.ctx.PerformAutomaticBackup()
	if err := m.tracker.RemoveHabit(id); err != nil {
		m.setError(err)
		return
	}
	m.persist(fmt.Sprintf("Deleted %s", h.Title))
}
