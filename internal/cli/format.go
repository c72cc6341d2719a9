package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/scheduler"
)

// BucketLabel is the heading shown for a time of day.
func BucketLabel(b scheduler.TimeOfDay) string {
	switch b {
	case scheduler.Morning:
		return "Mañana"
	case scheduler.Afternoon:
		return "Tarde"
	default:
		return "Noche"
	}
}

// StatusMark is the one-character marker for an item's status.
func StatusMark(s scheduler.Status) string {
	switch s {
	case scheduler.StatusDone:
		return "✓"
	case scheduler.StatusOverdue:
		return "!"
	default:
		return "·"
	}
}

// ScheduleLabel describes when a habit is due.
func ScheduleLabel(h models.Habit) string {
	if h.IsOffset() {
		return fmt.Sprintf("+%d min", h.Offset())
	}
	return h.ExactTime
}

// HabitLine renders a habit for list output.
func HabitLine(h models.Habit) string {
	line := fmt.Sprintf("%s %s  [%s, %s, x%d]", h.Icon, h.Title, ScheduleLabel(h), h.Frequency, h.DailyRepeats)
	if h.EndDate != nil {
		line += fmt.Sprintf("  %s → %s", h.StartDate, *h.EndDate)
	} else {
		line += fmt.Sprintf("  desde %s", h.StartDate)
	}
	return strings.TrimSpace(line)
}

// ItemLine renders a timeline item.
func ItemLine(it scheduler.Item) string {
	return fmt.Sprintf("%s %-8s %s %s (%d/%d)", StatusMark(it.Status), ScheduleLabel(it.Habit), it.Habit.Icon, it.Habit.Title, it.Count, it.Required)
}

// ProgressBar draws ratio in [0, 1] as a bar of width cells.
func ProgressBar(ratio float64, width int) string {
	ratio = math.Max(0, math.Min(1, ratio))
	filled := int(math.Round(ratio * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Percent renders ratio as a whole percentage.
func Percent(ratio float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(ratio*100)))
}
