package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/tui"
)

type TuiCmd struct {
	AltScreen bool `default:"true" negatable:"" help:"Draw the dashboard on the alternate screen."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	m, err := tui.NewModel(ctx)
	if err != nil {
		return err
	}

	var opts []tea.ProgramOption
	if c.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("dashboard exited: %w", err)
	}
	return nil
}
