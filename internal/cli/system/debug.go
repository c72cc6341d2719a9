package system

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/utils"
)

type DebugCmd struct {
	DBPath       DebugDBPathCmd       `cmd:"" help:"Show the store path."`
	DumpState    DebugDumpStateCmd    `cmd:"" help:"Dump the full tracker state as JSON."`
	DumpHabit    DebugDumpHabitCmd    `cmd:"" help:"Dump habit data as JSON."`
	DumpDay      DebugDumpDayCmd      `cmd:"" help:"Dump the completions of one day as JSON."`
	DumpSettings DebugDumpSettingsCmd `cmd:"" help:"Dump settings data as JSON."`
}

func printJSON(ctx *cli.Context, what string, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", what, err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, "output", map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpStateCmd struct {
	Raw bool `help:"Dump the state exactly as stored, before normalization."`
}

func (cmd *DebugDumpStateCmd) Run(ctx *cli.Context) error {
	if cmd.Raw {
		raw, err := ctx.Store.LoadState()
		if err != nil {
			return fmt.Errorf("failed to load state: %w", err)
		}
		return printJSON(ctx, "state", raw)
	}

	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}
	return printJSON(ctx, "state", t.Snapshot())
}

type DebugDumpHabitCmd struct {
	ID string `arg:"" help:"ID or title of the habit to dump."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}
	habit, err := cli.ResolveHabit(t, cmd.ID)
	if err != nil {
		return err
	}
	return printJSON(ctx, "habit", habit)
}

type DebugDumpDayCmd struct {
	Date string `arg:"" optional:"" default:"today" help:"Day to dump (YYYY-MM-DD or 'today')."`
}

type dayDump struct {
	Date             string               `json:"date"`
	Counts           map[string]int       `json:"counts"`
	FirstCompletions map[string]time.Time `json:"firstCompletions,omitempty"`
}

func (cmd *DebugDumpDayCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}

	day := cmd.Date
	if day == "" || day == "today" {
		day = utils.DateKey(t.Now())
	}
	if !isValidDate(day) {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", day)
	}

	l := t.Ledger()
	out := dayDump{Date: day, Counts: l.Entries()[day], FirstCompletions: l.FirstCompletions()[day]}
	if out.Counts == nil {
		out.Counts = map[string]int{}
	}
	return printJSON(ctx, "day", out)
}

func isValidDate(dateStr string) bool {
	_, err := time.Parse("2006-01-02", dateStr)
	return err == nil
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(ctx, "settings", settings)
}
