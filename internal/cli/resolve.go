package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/tracker"
)

// ResolveHabit finds an active habit by id, or by title ignoring case.
// A title shared by several habits is ambiguous and must be given by id.
func ResolveHabit(t *tracker.Tracker, ref string) (models.Habit, error) {
	if h, ok := t.Habit(ref); ok {
		return h, nil
	}

	var matches []models.Habit
	for _, h := range t.Habits() {
		if strings.EqualFold(strings.TrimSpace(h.Title), strings.TrimSpace(ref)) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("%w: %s", tracker.ErrHabitNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("%d habits are titled %q, use the id instead", len(matches), ref)
	}
}
