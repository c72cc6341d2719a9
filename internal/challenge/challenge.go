// Package challenge picks the "today's challenge" suggestion shown on the
// dashboard.
package challenge

import (
	"time"

	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/utils"
)

// Selector chooses at most one suggested habit for now. It must not return a
// suggestion whose title matches an active habit while an unmatched one
// exists in the catalog.
type Selector interface {
	Select(active []models.Habit, suggested []models.SuggestedHabit, now time.Time) (models.SuggestedHabit, bool)
}

// Heuristic prefers a fixed list of catalog ids per time of day, then a general
// fallback, then the first catalog entry that is not already active.
type Heuristic struct{}

var (
	morningPicks   = []string{"water", "walk15", "read10"}
	afternoonPicks = []string{"walk15", "create", "read10"}
	nightPicks     = []string{"meditate5", "sleep8", "journal"}
	fallbackPick   = "eatHealthy"
)

func (Heuristic) Select(active []models.Habit, suggested []models.SuggestedHabit, now time.Time) (models.SuggestedHabit, bool) {
	activeTitles := make(map[string]struct{}, len(active))
	for _, h := range active {
		activeTitles[h.Title] = struct{}{}
	}
	isFree := func(s models.SuggestedHabit) bool {
		_, taken := activeTitles[s.Title]
		return !taken
	}

	for _, id := range Candidates(now) {
		for _, s := range suggested {
			if s.ID == id {
				if isFree(s) {
					return s, true
				}
				break
			}
		}
	}

	for _, s := range suggested {
		if isFree(s) {
			return s, true
		}
	}
	return models.SuggestedHabit{}, false
}

// Candidates returns the preferred catalog ids for the hour of now, in order.
func Candidates(now time.Time) []string {
	minutes := utils.MinutesOfDay(now)
	var picks []string
	switch {
	case minutes >= constants.MorningStartMin && minutes < constants.AfternoonStartMin:
		picks = morningPicks
	case minutes >= constants.AfternoonStartMin && minutes < constants.NightStartMin:
		picks = afternoonPicks
	default:
		picks = nightPicks
	}
	out := make([]string, 0, len(picks)+1)
	out = append(out, picks...)
	return append(out, fallbackPick)
}
