package tracker

import (
	"time"

	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/ledger"
	"github.com/julianstephens/smartsteps/internal/logger"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/normalize"
)

// Snapshot is the exported, canonical state handed to storage.
type Snapshot struct {
	Version          int                             `json:"version"`
	Active           []models.Habit                  `json:"active"`
	Suggested        []models.SuggestedHabit         `json:"suggested"`
	Completions      map[string]map[string]int       `json:"completions"`
	FirstCompletions map[string]map[string]time.Time `json:"firstCompletions,omitempty"`
}

// RawSnapshot is state as read back from storage. Habits may be in any older
// shape and completion values may be legacy booleans; FromSnapshot resolves
// both. Its JSON layout matches Snapshot.
type RawSnapshot struct {
	Version          int                             `json:"version"`
	Active           []models.RawHabit               `json:"active"`
	Suggested        []models.SuggestedHabit         `json:"suggested"`
	Completions      map[string]map[string]any       `json:"completions"`
	FirstCompletions map[string]map[string]time.Time `json:"firstCompletions,omitempty"`
}

// Raw converts s into the shape storage returns, so a saved snapshot can be
// loaded without a round trip through bytes.
func (s Snapshot) Raw() RawSnapshot {
	raw := RawSnapshot{
		Version:          s.Version,
		Suggested:        append([]models.SuggestedHabit(nil), s.Suggested...),
		Completions:      make(map[string]map[string]any, len(s.Completions)),
		FirstCompletions: s.FirstCompletions,
	}
	for _, h := range s.Active {
		raw.Active = append(raw.Active, normalize.ToRaw(h))
	}
	for day, bucket := range s.Completions {
		m := make(map[string]any, len(bucket))
		for id, n := range bucket {
			m[id] = n
		}
		raw.Completions[day] = m
	}
	return raw
}

// Snapshot exports the full state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Snapshot{
		Version:          constants.SnapshotVersion,
		Active:           append([]models.Habit{}, t.active...),
		Suggested:        append([]models.SuggestedHabit{}, t.suggested...),
		Completions:      t.ledger.Entries(),
		FirstCompletions: t.ledger.FirstCompletions(),
	}
}

// FromSnapshot rebuilds a tracker from stored state. Every habit passes
// through normalization, which migrates older layouts; habits stored without
// an id get a fresh one. An empty catalog falls back to the built-in one.
func FromSnapshot(snap RawSnapshot, opts Options) *Tracker {
	t := New(opts)
	today := t.today()

	if snap.Version < constants.SnapshotVersion {
		logger.Info("Migrating stored habits", "from", snap.Version, "to", constants.SnapshotVersion)
	}

	t.active = make([]models.Habit, 0, len(snap.Active))
	for _, raw := range snap.Active {
		if raw.ID == "" {
			raw.ID = t.newID()
			logger.Warn("Stored habit had no id, assigned one", "title", raw.Title, "id", raw.ID)
		}
		t.active = append(t.active, normalize.Habit(raw, today))
	}

	if len(snap.Suggested) > 0 {
		t.suggested = append([]models.SuggestedHabit(nil), snap.Suggested...)
	}

	t.ledger = ledger.FromEntries(snap.Completions, snap.FirstCompletions)
	return t
}
