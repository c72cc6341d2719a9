package habits

import (
	"fmt"

	"github.com/julianstephens/smartsteps/internal/challenge"
	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/scheduler"
)

// TodayCmd prints today's timeline grouped by time of day.
type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}

	now := t.Now()
	ctx.Printf("Hoy, %s\n", now.Format("Monday 02 Jan"))

	items := t.Timeline()
	if len(items) == 0 {
		ctx.Println("\nNothing scheduled today.")
		return nil
	}

	byBucket := make(map[scheduler.TimeOfDay][]scheduler.Item)
	for _, it := range items {
		byBucket[it.Bucket] = append(byBucket[it.Bucket], it)
	}
	for _, b := range scheduler.TimesOfDay {
		if len(byBucket[b]) == 0 {
			continue
		}
		ctx.Printf("\n%s\n", cli.BucketLabel(b))
		for _, it := range byBucket[b] {
			ctx.Printf("  %s\n", cli.ItemLine(it))
		}
	}

	if s, ok := t.Challenge(challenge.Heuristic{}); ok {
		ctx.Printf("\nReto del día: %s %s\n", s.Icon, s.Title)
	}
	return nil
}

// NextCmd prints the next exact habit to come due.
type NextCmd struct{}

func (c *NextCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}

	occ, ok := t.Next()
	if !ok {
		ctx.Println("No upcoming habits.")
		return nil
	}

	when := fmt.Sprintf("in %s", formatDelta(occ.Delta))
	if occ.DayOffset == 1 {
		when = "tomorrow"
	}
	ctx.Printf("Next: %s %s at %s (%s)\n", occ.Habit.Icon, occ.Habit.Title, occ.Habit.ExactTime, when)
	return nil
}

func formatDelta(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh %02dmin", minutes/60, minutes%60)
}

// ProgressCmd prints weekly progress, streak and a daily chart.
type ProgressCmd struct {
	Days int `help:"Days to chart." default:"7"`
}

func (c *ProgressCmd) Run(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}

	days := c.Days
	if days <= 0 {
		days = constants.WeeklyWindowDays
	}
	stats := t.Stats(days)

	ctx.Printf("Weekly progress: %s %s\n", cli.ProgressBar(stats.Weekly, 20), cli.Percent(stats.Weekly))
	ctx.Printf("Current streak:  %d day(s)\n", stats.Streak)
	ctx.Printf("Completions:     %d\n", stats.TotalCompletions)

	ctx.Println()
	for _, d := range stats.Days {
		ctx.Printf("  %s %s %d/%d\n", d.Date, cli.ProgressBar(d.Ratio, 10), d.Done, d.Total)
	}
	return nil
}
