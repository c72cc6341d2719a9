package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/ledger"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/utils"
)

var (
	ErrEmptyTitle     = errors.New("title is required")
	ErrInvalidTime    = errors.New("time must look like 8:30 AM")
	ErrInvalidDate    = errors.New("date must be a real YYYY-MM-DD day")
	ErrEndBeforeStart = errors.New("end date is before start date")
)

// Conflict represents a detected problem in stored habits or completions
type Conflict struct {
	Type        constants.ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Habit titles involved
	HabitIDs    []string // IDs of habits involved (for auto-fixing)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string   // Human-readable description of the action
	SourceConflict Conflict // The conflict that triggered this fix action
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Merge appends the conflicts of other.
func (vr *ValidationResult) Merge(other ValidationResult) {
	vr.Conflicts = append(vr.Conflicts, other.Conflicts...)
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// ValidateHabitInput gates a save from a form or the CLI. Out-of-range
// numbers are not errors; normalization clamps them.
func ValidateHabitInput(raw models.RawHabit) error {
	if strings.TrimSpace(raw.Title) == "" {
		return ErrEmptyTitle
	}
	if raw.ScheduleType != models.ScheduleOffset {
		t := raw.ExactTime
		if t == "" {
			t = raw.Time
		}
		if t != "" && !utils.ValidateTime12h(t) {
			return fmt.Errorf("%w: %q", ErrInvalidTime, t)
		}
	}
	if raw.StartDate != "" && !utils.ValidateDate(raw.StartDate) {
		return fmt.Errorf("start %w: %q", ErrInvalidDate, raw.StartDate)
	}
	if raw.EndDate != nil && *raw.EndDate != "" {
		if !utils.ValidateDate(*raw.EndDate) {
			return fmt.Errorf("end %w: %q", ErrInvalidDate, *raw.EndDate)
		}
		if raw.StartDate != "" && utils.CompareDates(*raw.EndDate, raw.StartDate) < 0 {
			return ErrEndBeforeStart
		}
	}
	return nil
}

// Validator validates habits and ledgers for conflicts
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabits checks the active collection for records a direct write
// could have left behind.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	titleCount := make(map[string][]string)
	for _, h := range habits {
		if h.ID == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        constants.ConflictMissingHabitID,
				Description: fmt.Sprintf("Habit \"%s\" has no ID", h.Title),
				Items:       []string{h.Title},
			})
		}

		if strings.TrimSpace(h.Title) == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        constants.ConflictEmptyTitle,
				Description: fmt.Sprintf("Habit %s has an empty title", h.ID),
				HabitIDs:    []string{h.ID},
			})
		} else {
			titleCount[h.Title] = append(titleCount[h.Title], h.ID)
		}

		if h.IsExact() && !utils.ValidateTime12h(h.ExactTime) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        constants.ConflictInvalidTime,
				Description: fmt.Sprintf("Habit \"%s\" has invalid exact time: %s", h.Title, h.ExactTime),
				Items:       []string{h.Title},
				HabitIDs:    []string{h.ID},
			})
		}

		if !utils.ValidateDate(h.StartDate) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        constants.ConflictInvalidDate,
				Description: fmt.Sprintf("Habit \"%s\" has invalid start date: %s", h.Title, h.StartDate),
				Date:        h.StartDate,
				Items:       []string{h.Title},
				HabitIDs:    []string{h.ID},
			})
		}

		if h.EndDate != nil {
			if !utils.ValidateDate(*h.EndDate) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        constants.ConflictInvalidDate,
					Description: fmt.Sprintf("Habit \"%s\" has invalid end date: %s", h.Title, *h.EndDate),
					Date:        *h.EndDate,
					Items:       []string{h.Title},
					HabitIDs:    []string{h.ID},
				})
			} else if utils.CompareDates(*h.EndDate, h.StartDate) < 0 {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        constants.ConflictEndBeforeStart,
					Description: fmt.Sprintf("Habit \"%s\" ends (%s) before it starts (%s)", h.Title, *h.EndDate, h.StartDate),
					Date:        *h.EndDate,
					Items:       []string{h.Title},
					HabitIDs:    []string{h.ID},
				})
			}
		}
	}

	titles := make([]string, 0, len(titleCount))
	for title := range titleCount {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		ids := titleCount[title]
		if len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        constants.ConflictDuplicateTitle,
				Description: fmt.Sprintf("Duplicate habit title: \"%s\" (IDs: %v)", title, ids),
				Items:       []string{title},
				HabitIDs:    ids,
			})
		}
	}

	return result
}

// ValidateLedger reports ledger entries that belong to no active habit.
func (v *Validator) ValidateLedger(habits []models.Habit, l *ledger.Ledger) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	orphans := OrphanIDs(habits, l)
	if len(orphans) > 0 {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        constants.ConflictOrphanCompletes,
			Description: fmt.Sprintf("Completions recorded for %d unknown habit(s): %v", len(orphans), orphans),
			HabitIDs:    orphans,
		})
	}
	return result
}

// OrphanIDs lists ledger habit ids with no matching active habit.
func OrphanIDs(habits []models.Habit, l *ledger.Ledger) []string {
	known := make(map[string]struct{}, len(habits))
	for _, h := range habits {
		known[h.ID] = struct{}{}
	}
	var orphans []string
	for _, id := range l.HabitIDs() {
		if _, ok := known[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	return orphans
}

// FixOrphans removes every orphan id from l and describes what it did.
func FixOrphans(habits []models.Habit, l *ledger.Ledger) []FixAction {
	var actions []FixAction
	for _, c := range New().ValidateLedger(habits, l).Conflicts {
		for _, id := range c.HabitIDs {
			l.RemoveHabit(id)
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Removed completions of unknown habit %s", id),
				SourceConflict: c,
			})
		}
	}
	return actions
}
