package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/smartsteps/internal/challenge"
	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/tracker"
	"github.com/julianstephens/smartsteps/internal/tui/components/timeline"
)

// TickMsg refreshes the dashboard so statuses follow the clock.
type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type Model struct {
	ctx           *cli.Context
	tracker       *tracker.Tracker
	selector      challenge.Selector
	state         constants.SessionState
	keys          KeyMap
	help          help.Model
	timeline      timeline.Model
	weekly        float64
	challenge     *models.SuggestedHabit
	habitToDelete string
	status        string
	errMsg        string
	quitting      bool
	width         int
	height        int
}

// NewModel loads the tracker from ctx and builds the dashboard.
func NewModel(ctx *cli.Context) (Model, error) {
	t, err := ctx.LoadTracker()
	if err != nil {
		return Model{}, err
	}

	m := Model{
		ctx:      ctx,
		tracker:  t,
		selector: challenge.Heuristic{},
		state:    constants.StateToday,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		timeline: timeline.New(nil),
	}
	m.refresh()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// refresh recomputes everything derived from the tracker.
func (m *Model) refresh() {
	m.timeline.SetItems(m.tracker.Timeline())
	m.weekly = m.tracker.WeeklyProgress()
	m.challenge = nil
	if s, ok := m.tracker.Challenge(m.selector); ok {
		m.challenge = &s
	}
}

// persist saves the tracker after a mutation and refreshes the view.
func (m *Model) persist(status string) {
	if err := m.ctx.SaveTracker(m.tracker); err != nil {
		m.setError(fmt.Errorf("failed to save: %w", err))
		return
	}
	m.status = status
	m.errMsg = ""
	m.refresh()
}

func (m *Model) setError(err error) {
	m.errMsg = err.Error()
	m.status = ""
}
