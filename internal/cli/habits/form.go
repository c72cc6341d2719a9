package habits

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/utils"
)

// habitFormModel holds the form fields as text until submission.
type habitFormModel struct {
	Title        string
	Icon         string
	Frequency    string
	Repeats      string
	ScheduleType models.ScheduleType
	Time         string
	Offset       string
}

func newHabitFormModel(raw models.RawHabit) *habitFormModel {
	fm := &habitFormModel{
		Title:        raw.Title,
		Icon:         raw.Icon,
		Frequency:    raw.Frequency,
		Repeats:      "1",
		ScheduleType: models.ScheduleExact,
		Time:         raw.ExactTime,
		Offset:       "60",
	}
	if fm.Frequency == "" {
		fm.Frequency = models.FrequencyDaily
	}
	if raw.DailyRepeats.Valid {
		fm.Repeats = strconv.Itoa(raw.DailyRepeats.Value)
	}
	if raw.ScheduleType == models.ScheduleOffset {
		fm.ScheduleType = models.ScheduleOffset
		fm.Offset = strconv.Itoa(raw.OffsetMinutes.OrDefault(60))
	}
	return fm
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func newHabitForm(fm *habitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit").
				Value(&fm.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Icon").
				Description("An emoji, optional").
				Value(&fm.Icon),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(
					huh.NewOption(models.FrequencyDaily, models.FrequencyDaily),
					huh.NewOption(models.FrequencyWeekly, models.FrequencyWeekly),
					huh.NewOption(models.FrequencyAlternateDays, models.FrequencyAlternateDays),
				).
				Value(&fm.Frequency),
			huh.NewInput().
				Title("Times per day").
				Value(&fm.Repeats).
				Validate(positiveInt),
			huh.NewSelect[models.ScheduleType]().
				Title("Schedule").
				Options(
					huh.NewOption("At a time of day", models.ScheduleExact),
					huh.NewOption("After the first completion", models.ScheduleOffset),
				).
				Value(&fm.ScheduleType),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Time").
				Placeholder("08:00 AM").
				Value(&fm.Time).
				Validate(func(s string) error {
					if strings.TrimSpace(s) != "" && !utils.ValidateTime12h(s) {
						return fmt.Errorf("use hh:mm AM/PM")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return fm.ScheduleType != models.ScheduleExact }),
		huh.NewGroup(
			huh.NewInput().
				Title("Minutes after first completion").
				Value(&fm.Offset).
				Validate(positiveInt),
		).WithHideFunc(func() bool { return fm.ScheduleType != models.ScheduleOffset }),
	).WithTheme(huh.ThemeDracula())
}

// raw merges the form answers into base, which still carries the dates
// given on the command line.
func (fm *habitFormModel) raw(base models.RawHabit) models.RawHabit {
	base.Title = strings.TrimSpace(fm.Title)
	base.Icon = strings.TrimSpace(fm.Icon)
	base.Frequency = fm.Frequency
	base.DailyRepeats = models.ParseLooseInt(fm.Repeats)
	base.ScheduleType = fm.ScheduleType
	if fm.ScheduleType == models.ScheduleOffset {
		base.ExactTime = ""
		base.OffsetMinutes = models.ParseLooseInt(fm.Offset)
	} else {
		base.ExactTime = strings.TrimSpace(fm.Time)
		base.OffsetMinutes = models.LooseInt{}
	}
	return base
}

func runHabitForm(base models.RawHabit) (models.RawHabit, error) {
	fm := newHabitFormModel(base)
	if err := newHabitForm(fm).Run(); err != nil {
		return base, fmt.Errorf("habit form cancelled: %w", err)
	}
	return fm.raw(base), nil
}
