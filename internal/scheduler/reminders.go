package scheduler

import (
	"sort"
	"time"

	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/utils"
)

// Reminder is a computed trigger instant for one habit.
type Reminder struct {
	Habit models.Habit
	At    time.Time
}

// Reminders returns the next trigger of every habit active today, ordered by
// time. Exact habits fire at their exact time, today if it is still ahead and
// tomorrow otherwise. Offset habits fire offsetMinutes after the first
// completion of the day, so they only appear once that completion exists and
// while the habit is not yet done.
func (s *Scheduler) Reminders(habits []models.Habit, l Ledger, now time.Time) []Reminder {
	day := utils.DateKey(now)
	nowMinutes := utils.MinutesOfDay(now)

	var out []Reminder
	for _, h := range habits {
		if !s.IsActiveOn(h, day) {
			continue
		}
		if h.IsOffset() {
			if at, ok := s.offsetTrigger(h, l, day); ok {
				out = append(out, Reminder{Habit: h, At: at})
			}
			continue
		}
		occ, ok := s.NextOccurrence([]models.Habit{h}, nowMinutes)
		if !ok {
			continue
		}
		at := utils.AtMinutes(now, occ.Minutes)
		if occ.DayOffset == 1 {
			at = utils.AtMinutes(now.AddDate(0, 0, 1), occ.Minutes)
		}
		out = append(out, Reminder{Habit: h, At: at})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// Due returns the reminders that fired in the window (now-grace, now] and
// whose habit is still not done on the day the reminder belongs to. It is
// what a periodic notifier should deliver on each tick. A window that crosses
// midnight also covers the previous day's late reminders.
func (s *Scheduler) Due(habits []models.Habit, l Ledger, now time.Time, grace time.Duration) []Reminder {
	from := now.Add(-grace)

	var out []Reminder
	for d := utils.AtMinutes(from, 0); !d.After(now); d = d.AddDate(0, 0, 1) {
		day := utils.DateKey(d)
		for _, h := range habits {
			if !s.IsActiveOn(h, day) || s.Classify(h, 0, l, day) == StatusDone {
				continue
			}
			var at time.Time
			if h.IsOffset() {
				trigger, ok := s.offsetTrigger(h, l, day)
				if !ok {
					continue
				}
				at = trigger
			} else {
				minutes, ok := utils.Parse12hMinutes(h.ExactTime)
				if !ok {
					continue
				}
				at = utils.AtMinutes(d, minutes)
			}
			if at.After(from) && !at.After(now) {
				out = append(out, Reminder{Habit: h, At: at})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

func (s *Scheduler) offsetTrigger(h models.Habit, l Ledger, day string) (time.Time, bool) {
	if l.CountFor(h.ID, day) >= max(1, h.DailyRepeats) {
		return time.Time{}, false
	}
	first, ok := l.FirstCompletion(h.ID, day)
	if !ok {
		return time.Time{}, false
	}
	offset := utils.Clamp(h.Offset(), constants.MinOffsetMinutes, constants.MaxOffsetMinutes)
	return first.Add(time.Duration(offset) * time.Minute), true
}
