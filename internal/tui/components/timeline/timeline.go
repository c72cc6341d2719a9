package timeline

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/scheduler"
)

// UnbucketedLabel heads the habits that have no fixed time.
const UnbucketedLabel = "Sin hora fija"

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type KeyMap struct {
	Up   key.Binding
	Down key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

type section struct {
	label string
	items []scheduler.Item
}

// Model renders today's timeline grouped by time of day with a cursor over
// the habit rows.
type Model struct {
	keys     KeyMap
	sections []section
	order    []scheduler.Item
	cursor   int
	width    int
	height   int
}

func New(items []scheduler.Item) Model {
	m := Model{keys: DefaultKeyMap()}
	m.SetItems(items)
	return m
}

// SetItems replaces the rows, keeping the cursor on the same habit when it
// is still listed.
func (m *Model) SetItems(items []scheduler.Item) {
	selectedID := ""
	if it, ok := m.Selected(); ok {
		selectedID = it.Habit.ID
	}

	byBucket := make(map[scheduler.TimeOfDay][]scheduler.Item)
	var unbucketed []scheduler.Item
	for _, it := range items {
		if !it.HasTime {
			unbucketed = append(unbucketed, it)
			continue
		}
		byBucket[it.Bucket] = append(byBucket[it.Bucket], it)
	}

	m.sections = nil
	m.order = nil
	for _, b := range scheduler.TimesOfDay {
		if len(byBucket[b]) == 0 {
			continue
		}
		m.sections = append(m.sections, section{label: cli.BucketLabel(b), items: byBucket[b]})
		m.order = append(m.order, byBucket[b]...)
	}
	if len(unbucketed) > 0 {
		m.sections = append(m.sections, section{label: UnbucketedLabel, items: unbucketed})
		m.order = append(m.order, unbucketed...)
	}

	m.cursor = min(m.cursor, max(0, len(m.order)-1))
	for i, it := range m.order {
		if it.Habit.ID == selectedID {
			m.cursor = i
			break
		}
	}
}

// Selected returns the item under the cursor.
func (m Model) Selected() (scheduler.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.order) {
		return scheduler.Item{}, false
	}
	return m.order[m.cursor], true
}

func (m Model) Len() int {
	return len(m.order)
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.order)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.order) == 0 {
		return emptyStyle.Render("Nothing scheduled today.")
	}

	var b strings.Builder
	row := 0
	for _, s := range m.sections {
		b.WriteString(headerStyle.Render(s.label))
		b.WriteString("\n")
		for _, it := range s.items {
			line := cli.ItemLine(it)
			switch {
			case row == m.cursor:
				line = selectedStyle.Render("> " + line)
			case it.Status == scheduler.StatusDone:
				line = "  " + doneStyle.Render(line)
			case it.Status == scheduler.StatusOverdue:
				line = "  " + overdueStyle.Render(line)
			default:
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
			row++
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
