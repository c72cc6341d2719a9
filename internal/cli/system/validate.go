package system

import (
	"github.com/julianstephens/smartsteps/internal/cli"
)

type ValidateCmd struct {
	Fix bool `help:"Remove completions recorded for habits that no longer exist."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}

	ctx.Println("Validating habits and completions...")
	result := t.Validate()

	ctx.Println()
	ctx.Println(result.FormatReport())

	if !cmd.Fix || !result.HasConflicts() {
		return nil
	}

	actions := t.PruneOrphans()
	if len(actions) == 0 {
		ctx.Println("Nothing to fix automatically.")
		return nil
	}
	if err := ctx.SaveTracker(t); err != nil {
		return err
	}
	for _, a := range actions {
		ctx.Printf("✓ %s\n", a.Action)
	}
	return nil
}
