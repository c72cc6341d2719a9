package habits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/normalize"
	"github.com/julianstephens/smartsteps/internal/validation"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit an existing habit."`
	List   HabitListCmd   `cmd:"" help:"List active habits."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its completion history."`
	Done   HabitDoneCmd   `cmd:"" help:"Record a completion for today."`
	Snooze HabitSnoozeCmd `cmd:"" help:"Push an exact habit back by some minutes."`
}

// ScheduleFlags are shared by add and edit.
type ScheduleFlags struct {
	Icon      string `help:"Emoji shown next to the title."`
	Frequency string `help:"Frequency label, e.g. Diario or Semanal."`
	Repeats   int    `help:"Completions required per day (1-20)."`
	Start     string `help:"Start date (YYYY-MM-DD)."`
	End       string `help:"End date (YYYY-MM-DD). Use 'none' with edit to clear it."`
	Time      string `help:"Exact time of day, e.g. '07:30 AM'."`
	Offset    *int   `help:"Minutes after the first completion of the day. Makes the habit offset-scheduled."`
}

func (f ScheduleFlags) raw(title string) models.RawHabit {
	raw := models.RawHabit{
		Title:     strings.TrimSpace(title),
		Icon:      f.Icon,
		Frequency: f.Frequency,
		StartDate: f.Start,
		ExactTime: strings.TrimSpace(f.Time),
	}
	if f.Repeats > 0 {
		raw.DailyRepeats = models.Int(f.Repeats)
	}
	if f.End != "" && !strings.EqualFold(f.End, "none") {
		end := f.End
		raw.EndDate = &end
	}
	switch {
	case f.Offset != nil:
		raw.ScheduleType = models.ScheduleOffset
		raw.OffsetMinutes = models.Int(*f.Offset)
	case raw.ExactTime != "":
		raw.ScheduleType = models.ScheduleExact
	}
	return raw
}

type HabitAddCmd struct {
	Title string `arg:"" optional:"" help:"Habit title. A form is shown when omitted."`

	ScheduleFlags `embed:""`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	raw := c.raw(c.Title)
	if raw.Title == "" {
		var err error
		raw, err = runHabitForm(raw)
		if err != nil {
			return err
		}
	}

	if err := validation.ValidateHabitInput(raw); err != nil {
		return fmt.Errorf("invalid habit: %w", err)
	}

	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}
	h := t.AddHabit(raw)
	if err := ctx.SaveTracker(t); err != nil {
		return err
	}

	ctx.Printf("Added habit: %s (ID: %s)\n", cli.HabitLine(h), h.ID)
	return nil
}

type HabitEditCmd struct {
	Habit string `arg:"" help:"Habit id or title."`
	Title string `help:"New title."`

	ScheduleFlags `embed:""`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}
	h, err := cli.ResolveHabit(t, c.Habit)
	if err != nil {
		return err
	}

	patch := c.raw(c.Title)
	if strings.EqualFold(c.End, "none") {
		empty := ""
		patch.EndDate = &empty
	}

	// Validate the habit as it would look after the patch.
	if err := validation.ValidateHabitInput(normalize.Merge(h, patch)); err != nil {
		return fmt.Errorf("invalid habit: %w", err)
	}

	updated, err := t.UpdateHabit(h.ID, patch)
	if err != nil {
		return err
	}
	if err := ctx.SaveTracker(t); err != nil {
		return err
	}

	ctx.Printf("Updated habit: %s\n", cli.HabitLine(updated))
	return nil
}

type HabitListCmd struct {
	IDs bool `help:"Show habit ids."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}

	habits := t.Habits()
	if len(habits) == 0 {
		ctx.Println("No habits yet. Add one with 'smartsteps habit add' or 'smartsteps suggest add'.")
		return nil
	}

	for _, h := range habits {
		mark := "○"
		if t.IsDoneToday(h.ID) {
			mark = "✓"
		}
		line := fmt.Sprintf("%s %s", mark, cli.HabitLine(h))
		if c.IDs {
			line += fmt.Sprintf("  (%s)", h.ID)
		}
		ctx.Println(line)
	}
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id or title."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}
	h, err := cli.ResolveHabit(t, c.Habit)
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	if err := t.RemoveHabit(h.ID); err != nil {
		return err
	}
	if err := ctx.SaveTracker(t); err != nil {
		return err
	}

	ctx.Printf("Deleted habit: %s\n", h.Title)
	return nil
}

type HabitDoneCmd struct {
	Habit string `arg:"" help:"Habit id or title."`
}

func (c *HabitDoneCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}
	h, err := cli.ResolveHabit(t, c.Habit)
	if err != nil {
		return err
	}

	before := t.TodayCount(h.ID)
	count := t.Increment(h.ID)
	if count == before {
		ctx.Printf("%s is already done today (%d/%d)\n", h.Title, count, h.DailyRepeats)
		return nil
	}
	if err := ctx.SaveTracker(t); err != nil {
		return err
	}

	if count >= h.DailyRepeats {
		ctx.Printf("✓ %s done for today (%d/%d)\n", h.Title, count, h.DailyRepeats)
	} else {
		ctx.Printf("%s: %d/%d\n", h.Title, count, h.DailyRepeats)
	}
	return nil
}

var errSnoozeOffset = errors.New("offset habits follow the first completion of the day and cannot be snoozed")

type HabitSnoozeCmd struct {
	Habit   string `arg:"" help:"Habit id or title."`
	Minutes int    `help:"Minutes to push the habit back. Defaults to the snooze setting." short:"m"`
}

func (c *HabitSnoozeCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}
	h, err := cli.ResolveHabit(t, c.Habit)
	if err != nil {
		return err
	}
	if !h.IsExact() {
		return errSnoozeOffset
	}

	minutes := c.Minutes
	if minutes == 0 {
		minutes = ctx.Settings().DefaultSnoozeMin
	}

	snoozed, err := t.Snooze(h.ID, minutes)
	if err != nil {
		return err
	}
	if err := ctx.SaveTracker(t); err != nil {
		return err
	}

	ctx.Printf("Snoozed %s: %s → %s\n", h.Title, h.ExactTime, snoozed.ExactTime)
	return nil
}
