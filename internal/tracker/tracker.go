// Package tracker owns the habit collection, the suggested catalog and the
// completion ledger, and exposes every mutation the app performs on them.
package tracker

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/smartsteps/internal/challenge"
	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/ledger"
	"github.com/julianstephens/smartsteps/internal/logger"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/normalize"
	"github.com/julianstephens/smartsteps/internal/scheduler"
	"github.com/julianstephens/smartsteps/internal/utils"
	"github.com/julianstephens/smartsteps/internal/validation"
)

var (
	ErrHabitNotFound     = errors.New("habit not found")
	ErrSuggestedNotFound = errors.New("suggested habit not found")
	ErrAlreadyActive     = errors.New("a habit with that title is already active")
)

// Options configures a Tracker. Zero values pick the defaults.
type Options struct {
	// Now is the wall clock. Defaults to time.Now.
	Now func() time.Time
	// Location is the timezone day keys are computed in. Defaults to time.Local.
	Location *time.Location
	// NewID generates ids for habits created without one. Defaults to uuid.
	NewID func() string
}

// Tracker is safe for concurrent use. Each method is one indivisible step;
// nothing spans several calls.
type Tracker struct {
	mu        sync.Mutex
	active    []models.Habit
	suggested []models.SuggestedHabit
	ledger    *ledger.Ledger
	sched     *scheduler.Scheduler

	now   func() time.Time
	loc   *time.Location
	newID func() string
}

// New returns an empty tracker with the default suggested catalog.
func New(opts Options) *Tracker {
	t := &Tracker{
		suggested: models.DefaultSuggested(),
		ledger:    ledger.New(),
		sched:     scheduler.New(),
		now:       opts.Now,
		loc:       opts.Location,
		newID:     opts.NewID,
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	if t.newID == nil {
		t.newID = uuid.NewString
	}
	return t
}

// Now returns the current instant in the tracker's timezone.
func (t *Tracker) Now() time.Time {
	return t.now().In(t.loc)
}

func (t *Tracker) today() string {
	return utils.DateKey(t.Now())
}

func (t *Tracker) indexOf(id string) int {
	for i, h := range t.active {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) hasTitle(title string) bool {
	for _, h := range t.active {
		if h.Title == title {
			return true
		}
	}
	return false
}

// AddHabit normalizes raw and appends it to the active collection. A missing
// id is generated.
func (t *Tracker) AddHabit(raw models.RawHabit) models.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()

	if raw.ID == "" {
		raw.ID = t.newID()
	}
	h := normalize.Habit(raw, t.today())
	t.active = append(t.active, h)
	logger.Debug("Habit added", "id", h.ID, "title", h.Title)
	return h
}

// AddSuggested activates a catalog entry as a daily 08:00 AM habit. Entries
// are matched against active habits by title.
func (t *Tracker) AddSuggested(id string) (models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var s *models.SuggestedHabit
	for i := range t.suggested {
		if t.suggested[i].ID == id {
			s = &t.suggested[i]
			break
		}
	}
	if s == nil {
		return models.Habit{}, ErrSuggestedNotFound
	}
	if t.hasTitle(s.Title) {
		return models.Habit{}, ErrAlreadyActive
	}

	// The catalog id doubles as the habit id unless a renamed habit holds it.
	habitID := s.ID
	if t.indexOf(habitID) >= 0 {
		habitID = t.newID()
	}
	h := normalize.Habit(models.RawHabit{
		ID:           habitID,
		Title:        s.Title,
		Icon:         s.Icon,
		Frequency:    constants.DefaultFrequency,
		DailyRepeats: models.Int(1),
		ScheduleType: models.ScheduleExact,
		ExactTime:    constants.DefaultExactTime,
	}, t.today())
	t.active = append(t.active, h)
	logger.Debug("Suggested habit activated", "suggestion", id, "id", h.ID)
	return h, nil
}

// SearchSuggested returns catalog entries whose title or description contains
// q, ignoring case. An empty query returns the whole catalog.
func (t *Tracker) SearchSuggested(q string) []models.SuggestedHabit {
	t.mu.Lock()
	defer t.mu.Unlock()

	if q == "" {
		return append([]models.SuggestedHabit(nil), t.suggested...)
	}
	lq := strings.ToLower(q)
	var out []models.SuggestedHabit
	for _, s := range t.suggested {
		if strings.Contains(strings.ToLower(s.Title), lq) || strings.Contains(strings.ToLower(s.Desc), lq) {
			out = append(out, s)
		}
	}
	return out
}

// ImportSuggested merges entries into the catalog. Entries with a known id
// replace the existing one; new ids are appended. Entries without id or title
// are skipped. It returns how many entries were accepted.
func (t *Tracker) ImportSuggested(entries []models.SuggestedHabit) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	accepted := 0
	for _, e := range entries {
		if e.ID == "" || e.Title == "" {
			logger.Warn("Skipping suggested habit without id or title", "id", e.ID, "title", e.Title)
			continue
		}
		if e.Icon == "" {
			e.Icon = constants.DefaultIcon
		}
		replaced := false
		for i := range t.suggested {
			if t.suggested[i].ID == e.ID {
				t.suggested[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			t.suggested = append(t.suggested, e)
		}
		accepted++
	}
	return accepted
}

// UpdateHabit applies patch to the habit with id and re-normalizes it.
func (t *Tracker) UpdateHabit(id string, patch models.RawHabit) (models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return models.Habit{}, ErrHabitNotFound
	}
	t.active[i] = normalize.Patch(t.active[i], patch, t.today())
	logger.Debug("Habit updated", "id", id)
	return t.active[i], nil
}

// RemoveHabit deletes the habit and its completions on every day.
func (t *Tracker) RemoveHabit(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return ErrHabitNotFound
	}
	t.active = append(t.active[:i], t.active[i+1:]...)
	t.ledger.RemoveHabit(id)
	logger.Debug("Habit removed", "id", id)
	return nil
}

// Increment records a completion of id today and returns the new count. An id
// with no active habit is capped at one completion.
func (t *Tracker) Increment(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	repeats := 1
	if i := t.indexOf(id); i >= 0 {
		repeats = t.active[i].DailyRepeats
	} else {
		logger.Debug("Increment for unknown habit", "id", id)
	}
	now := t.Now()
	return t.ledger.Increment(id, utils.DateKey(now), repeats, now)
}

// TodayCount returns today's completions of id.
func (t *Tracker) TodayCount(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.CountFor(id, t.today())
}

// IsCompletedToday reports whether id has at least one completion today.
func (t *Tracker) IsCompletedToday(id string) bool {
	return t.TodayCount(id) > 0
}

// IsDoneToday reports whether id reached its required repeats today.
func (t *Tracker) IsDoneToday(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	repeats := 1
	if i := t.indexOf(id); i >= 0 {
		repeats = t.active[i].DailyRepeats
	}
	return t.ledger.IsDone(id, t.today(), repeats)
}

// Snooze moves an exact habit's time by minutes. Offset habits are returned
// unchanged.
func (t *Tracker) Snooze(id string, minutes int) (models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return models.Habit{}, ErrHabitNotFound
	}
	h := t.active[i]
	if !h.IsExact() {
		return h, nil
	}
	shifted := t.sched.ShiftExactTime(h, minutes)
	t.active[i] = normalize.Patch(h, models.RawHabit{ExactTime: shifted}, t.today())
	logger.Debug("Habit snoozed", "id", id, "from", h.ExactTime, "to", t.active[i].ExactTime)
	return t.active[i], nil
}

// WeeklyProgress returns the share of habit-days completed over the last week.
func (t *Tracker) WeeklyProgress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.WeeklyProgress(t.active, t.Now())
}

// Stats bundles the progress figures shown on the progress screen.
type Stats struct {
	Weekly           float64
	Streak           int
	TotalCompletions int
	Days             []ledger.DayProgress
}

// Stats computes progress over the last days days.
func (t *Tracker) Stats(days int) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.Now()
	return Stats{
		Weekly:           t.ledger.WeeklyProgress(t.active, now),
		Streak:           t.ledger.Streak(t.active, now),
		TotalCompletions: t.ledger.TotalCompletions(t.active),
		Days:             t.ledger.DailySeries(t.active, now, days),
	}
}

// Habits returns a copy of the active collection in insertion order.
func (t *Tracker) Habits() []models.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Habit(nil), t.active...)
}

// Habit returns the active habit with id.
func (t *Tracker) Habit(id string) (models.Habit, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.indexOf(id); i >= 0 {
		return t.active[i], true
	}
	return models.Habit{}, false
}

// Suggested returns a copy of the catalog.
func (t *Tracker) Suggested() []models.SuggestedHabit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.SuggestedHabit(nil), t.suggested...)
}

// Ledger returns a copy of the completion ledger.
func (t *Tracker) Ledger() *ledger.Ledger {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Clone()
}

// Timeline projects today's habits against a single captured instant.
func (t *Tracker) Timeline() []scheduler.Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sched.Timeline(t.active, t.ledger, t.Now())
}

// Next returns the next exact habit to come due among those active today.
func (t *Tracker) Next() (scheduler.Occurrence, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.Now()
	day := utils.DateKey(now)
	var todays []models.Habit
	for _, h := range t.active {
		if t.sched.IsActiveOn(h, day) {
			todays = append(todays, h)
		}
	}
	return t.sched.NextOccurrence(todays, utils.MinutesOfDay(now))
}

// Reminders returns the next trigger of every habit active today.
func (t *Tracker) Reminders() []scheduler.Reminder {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sched.Reminders(t.active, t.ledger, t.Now())
}

// Due returns the reminders that fired within grace before now.
func (t *Tracker) Due(grace time.Duration) []scheduler.Reminder {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sched.Due(t.active, t.ledger, t.Now(), grace)
}

// Challenge asks sel for today's challenge.
func (t *Tracker) Challenge(sel challenge.Selector) (models.SuggestedHabit, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sel.Select(t.active, t.suggested, t.Now())
}

// Validate checks the active collection and the ledger.
func (t *Tracker) Validate() validation.ValidationResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := validation.New()
	result := v.ValidateHabits(t.active)
	result.Merge(v.ValidateLedger(t.active, t.ledger))
	return result
}

// PruneOrphans drops ledger entries of habits that are no longer active.
func (t *Tracker) PruneOrphans() []validation.FixAction {
	t.mu.Lock()
	defer t.mu.Unlock()
	return validation.FixOrphans(t.active, t.ledger)
}
