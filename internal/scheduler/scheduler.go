package scheduler

import (
	"sort"
	"time"

	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/utils"
)

type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Night     TimeOfDay = "night"
)

// TimesOfDay lists the buckets in display order.
var TimesOfDay = []TimeOfDay{Morning, Afternoon, Night}

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusOverdue Status = "overdue"
)

// Ledger is the read side of the completion ledger the projector needs.
type Ledger interface {
	CountFor(habitID, day string) int
	FirstCompletion(habitID, day string) (time.Time, bool)
}

// Occurrence is the next time an exact habit comes due.
type Occurrence struct {
	Habit     models.Habit
	Minutes   int // exact time, minutes since midnight
	Delta     int // minutes from now until the occurrence
	DayOffset int // 0 today, 1 tomorrow
}

// Item is one row of the day's timeline.
type Item struct {
	Habit    models.Habit
	Minutes  int
	HasTime  bool // false for offset habits and unparseable exact times
	Bucket   TimeOfDay
	Status   Status
	Count    int
	Required int
}

// Delta returns the signed distance from nowMinutes to the item's time.
func (i Item) Delta(nowMinutes int) int {
	return i.Minutes - nowMinutes
}

type Scheduler struct{}

func New() *Scheduler {
	return &Scheduler{}
}

// NextOccurrence returns the exact habit that comes due soonest after
// nowMinutes, wrapping to tomorrow for times already passed. Ties go to the
// habit listed first. It reports false when there is no schedulable habit.
func (s *Scheduler) NextOccurrence(habits []models.Habit, nowMinutes int) (Occurrence, bool) {
	var best Occurrence
	found := false
	for _, h := range habits {
		if !h.IsExact() {
			continue
		}
		minutes, ok := utils.Parse12hMinutes(h.ExactTime)
		if !ok {
			continue
		}
		occ := Occurrence{Habit: h, Minutes: minutes, Delta: minutes - nowMinutes}
		if occ.Delta < 0 {
			occ.Delta += constants.MinutesPerDay
			occ.DayOffset = 1
		}
		if !found || occ.Delta < best.Delta {
			best = occ
			found = true
		}
	}
	return best, found
}

// Bucket assigns minutes since midnight to a time of day. Morning is
// [05:00, 12:00), afternoon [12:00, 19:00) and night everything else.
func (s *Scheduler) Bucket(minutes int) TimeOfDay {
	switch {
	case minutes >= constants.MorningStartMin && minutes < constants.AfternoonStartMin:
		return Morning
	case minutes >= constants.AfternoonStartMin && minutes < constants.NightStartMin:
		return Afternoon
	default:
		return Night
	}
}

// Buckets groups exact habits by time of day, keeping input order inside each
// bucket. Offset habits and habits whose time cannot be parsed are left out.
func (s *Scheduler) Buckets(habits []models.Habit) map[TimeOfDay][]models.Habit {
	out := make(map[TimeOfDay][]models.Habit, len(TimesOfDay))
	for _, h := range habits {
		if !h.IsExact() {
			continue
		}
		minutes, ok := utils.Parse12hMinutes(h.ExactTime)
		if !ok {
			continue
		}
		b := s.Bucket(minutes)
		out[b] = append(out[b], h)
	}
	return out
}

// SortByProximity orders items upcoming first by ascending delta, then items
// already past with the most recent first. Items without a time keep their
// relative order at the end.
func (s *Scheduler) SortByProximity(items []Item, nowMinutes int) {
	rank := func(it Item) (group, key int) {
		if !it.HasTime {
			return 2, 0
		}
		d := it.Delta(nowMinutes)
		if d >= 0 {
			return 0, d
		}
		return 1, -d
	}
	sort.SliceStable(items, func(i, j int) bool {
		gi, ki := rank(items[i])
		gj, kj := rank(items[j])
		if gi != gj {
			return gi < gj
		}
		return ki < kj
	})
}

// Classify reports a habit's state for day. A habit is done once its count
// reaches the required repeats, overdue when it is exact, unfinished and its
// time is already behind nowMinutes, and pending otherwise.
func (s *Scheduler) Classify(h models.Habit, nowMinutes int, l Ledger, day string) Status {
	if l.CountFor(h.ID, day) >= max(1, h.DailyRepeats) {
		return StatusDone
	}
	if h.IsExact() {
		if minutes, ok := utils.Parse12hMinutes(h.ExactTime); ok && minutes < nowMinutes {
			return StatusOverdue
		}
	}
	return StatusPending
}

// ShiftExactTime returns the habit's exact time moved by delta minutes,
// wrapping around midnight. Offset habits and unparseable times come back
// unchanged.
func (s *Scheduler) ShiftExactTime(h models.Habit, delta int) string {
	if !h.IsExact() {
		return h.ExactTime
	}
	minutes, ok := utils.Parse12hMinutes(h.ExactTime)
	if !ok {
		return h.ExactTime
	}
	return utils.FormatMinutes(minutes + delta)
}

// Overdue returns the habits classified overdue for day.
func (s *Scheduler) Overdue(habits []models.Habit, nowMinutes int, l Ledger, day string) []models.Habit {
	var out []models.Habit
	for _, h := range habits {
		if s.Classify(h, nowMinutes, l, day) == StatusOverdue {
			out = append(out, h)
		}
	}
	return out
}

// Upcoming returns unfinished exact habits whose time is now or later today.
func (s *Scheduler) Upcoming(habits []models.Habit, nowMinutes int, l Ledger, day string) []models.Habit {
	var out []models.Habit
	for _, h := range habits {
		if !h.IsExact() || s.Classify(h, nowMinutes, l, day) == StatusDone {
			continue
		}
		if minutes, ok := utils.Parse12hMinutes(h.ExactTime); ok && minutes >= nowMinutes {
			out = append(out, h)
		}
	}
	return out
}

// WithinMinutes returns exact habits whose next occurrence is at most n
// minutes away, crossing midnight if needed.
func (s *Scheduler) WithinMinutes(habits []models.Habit, nowMinutes, n int) []models.Habit {
	var out []models.Habit
	for _, h := range habits {
		if occ, ok := s.NextOccurrence([]models.Habit{h}, nowMinutes); ok && occ.Delta <= n {
			out = append(out, h)
		}
	}
	return out
}

// IsActiveOn reports whether day falls inside the habit's start and end
// dates. Unparseable dates do not exclude the habit.
func (s *Scheduler) IsActiveOn(h models.Habit, day string) bool {
	if utils.CompareDates(day, h.StartDate) < 0 {
		return false
	}
	if h.EndDate != nil && utils.CompareDates(day, *h.EndDate) > 0 {
		return false
	}
	return true
}

// Timeline projects the habits active on now's date into display rows sorted
// by proximity to now. now is read once so every row shares the same instant.
func (s *Scheduler) Timeline(habits []models.Habit, l Ledger, now time.Time) []Item {
	day := utils.DateKey(now)
	nowMinutes := utils.MinutesOfDay(now)

	items := make([]Item, 0, len(habits))
	for _, h := range habits {
		if !s.IsActiveOn(h, day) {
			continue
		}
		it := Item{
			Habit:    h,
			Status:   s.Classify(h, nowMinutes, l, day),
			Count:    l.CountFor(h.ID, day),
			Required: max(1, h.DailyRepeats),
		}
		if h.IsExact() {
			if minutes, ok := utils.Parse12hMinutes(h.ExactTime); ok {
				it.Minutes = minutes
				it.HasTime = true
				it.Bucket = s.Bucket(minutes)
			}
		}
		items = append(items, it)
	}
	s.SortByProximity(items, nowMinutes)
	return items
}
