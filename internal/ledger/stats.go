package ledger

import (
	"time"

	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/utils"
)

// DayProgress summarizes one calendar day for a set of habits.
type DayProgress struct {
	Date  string  `json:"date"`
	Done  int     `json:"done"`
	Total int     `json:"total"`
	Ratio float64 `json:"ratio"`
}

// WeeklyProgress returns the share of (habit, day) slots satisfied over the
// seven calendar days ending at now's date. It is 0 with no active habits and
// always within [0, 1].
func (l *Ledger) WeeklyProgress(active []models.Habit, now time.Time) float64 {
	totalSlots := len(active) * constants.WeeklyWindowDays
	if totalSlots == 0 {
		return 0
	}
	satisfied := 0
	for _, day := range utils.LastNDaysKeys(now, constants.WeeklyWindowDays) {
		satisfied += l.doneOn(active, day)
	}
	return utils.ClampFloat(float64(satisfied)/float64(totalSlots), 0, 1)
}

// DailySeries returns per-day progress for the n days ending at now's date,
// oldest first.
func (l *Ledger) DailySeries(active []models.Habit, now time.Time, n int) []DayProgress {
	keys := utils.LastNDaysKeys(now, n)
	series := make([]DayProgress, 0, n)
	for i := len(keys) - 1; i >= 0; i-- {
		done := l.doneOn(active, keys[i])
		p := DayProgress{Date: keys[i], Done: done, Total: len(active)}
		if p.Total > 0 {
			p.Ratio = float64(done) / float64(p.Total)
		}
		series = append(series, p)
	}
	return series
}

// Streak counts consecutive days, ending today, on which every active habit
// was done. An unfinished today does not break the streak; counting then
// starts from yesterday.
func (l *Ledger) Streak(active []models.Habit, now time.Time) int {
	if len(active) == 0 {
		return 0
	}
	day := utils.DateKey(now)
	if l.doneOn(active, day) < len(active) {
		day = utils.AddDays(day, -1)
	}

	// Nothing before the earliest recorded day can be complete.
	days := l.Days()
	if len(days) == 0 {
		return 0
	}
	earliest := days[0]

	streak := 0
	for day >= earliest && l.doneOn(active, day) == len(active) {
		streak++
		day = utils.AddDays(day, -1)
	}
	return streak
}

// TotalCompletions sums every recorded completion of the given habits.
func (l *Ledger) TotalCompletions(active []models.Habit) int {
	total := 0
	for _, bucket := range l.counts {
		for _, h := range active {
			total += bucket[h.ID]
		}
	}
	return total
}

func (l *Ledger) doneOn(habits []models.Habit, day string) int {
	done := 0
	for _, h := range habits {
		if l.IsDone(h.ID, day, h.DailyRepeats) {
			done++
		}
	}
	return done
}
