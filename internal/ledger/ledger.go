// Package ledger stores how many times each habit was completed on each day.
package ledger

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Ledger maps date keys to per-habit completion counts. It also remembers
// when the first completion of each (day, habit) pair happened, which is the
// anchor for offset-scheduled reminders.
//
// A Ledger is not safe for concurrent use; the tracker serializes access.
type Ledger struct {
	counts map[string]map[string]int
	firsts map[string]map[string]time.Time
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		counts: make(map[string]map[string]int),
		firsts: make(map[string]map[string]time.Time),
	}
}

// FromEntries builds a ledger from persisted data. Values may be integer
// counts or legacy booleans (true is one completion, false none); numeric
// strings and floats are accepted too. Unreadable values count as zero.
func FromEntries(entries map[string]map[string]any, firsts map[string]map[string]time.Time) *Ledger {
	l := New()
	for day, bucket := range entries {
		counts := make(map[string]int, len(bucket))
		for habitID, v := range bucket {
			counts[habitID] = toCount(v)
		}
		l.counts[day] = counts
	}
	for day, bucket := range firsts {
		m := make(map[string]time.Time, len(bucket))
		for habitID, at := range bucket {
			m[habitID] = at
		}
		l.firsts[day] = m
	}
	return l
}

// toCount is the only place stored completion values are interpreted.
func toCount(v any) int {
	var n int
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 1
		}
		return 0
	case int:
		n = t
	case int64:
		n = int(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		n = int(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		n = int(f)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

// Increment records one completion of habitID on day, never exceeding
// dailyRepeats. It returns the resulting count. at is stored as the first
// completion instant when the count leaves zero.
func (l *Ledger) Increment(habitID, day string, dailyRepeats int, at time.Time) int {
	if l.counts == nil {
		l.counts = make(map[string]map[string]int)
	}
	if l.firsts == nil {
		l.firsts = make(map[string]map[string]time.Time)
	}
	limit := max(1, dailyRepeats)
	prev := l.CountFor(habitID, day)
	next := min(limit, prev+1)

	bucket, ok := l.counts[day]
	if !ok {
		bucket = make(map[string]int)
		l.counts[day] = bucket
	}
	bucket[habitID] = next

	if prev == 0 && next > 0 {
		firsts, ok := l.firsts[day]
		if !ok {
			firsts = make(map[string]time.Time)
			l.firsts[day] = firsts
		}
		if _, seen := firsts[habitID]; !seen {
			firsts[habitID] = at
		}
	}
	return next
}

// CountFor returns the completions of habitID on day, 0 when none were recorded.
func (l *Ledger) CountFor(habitID, day string) int {
	return l.counts[day][habitID]
}

// IsDone reports whether habitID reached its required repeats on day.
func (l *Ledger) IsDone(habitID, day string, dailyRepeats int) bool {
	return l.CountFor(habitID, day) >= max(1, dailyRepeats)
}

// FirstCompletion returns when habitID was first completed on day.
func (l *Ledger) FirstCompletion(habitID, day string) (time.Time, bool) {
	at, ok := l.firsts[day][habitID]
	return at, ok
}

// RemoveHabit deletes habitID from every day. Days left without entries are
// kept as empty buckets.
func (l *Ledger) RemoveHabit(habitID string) {
	for _, bucket := range l.counts {
		delete(bucket, habitID)
	}
	for _, bucket := range l.firsts {
		delete(bucket, habitID)
	}
}

// Days returns every recorded date key in ascending order.
func (l *Ledger) Days() []string {
	days := make([]string, 0, len(l.counts))
	for day := range l.counts {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// HabitIDs returns the distinct habit ids that appear anywhere in the ledger.
func (l *Ledger) HabitIDs() []string {
	seen := make(map[string]struct{})
	for _, bucket := range l.counts {
		for habitID := range bucket {
			seen[habitID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Entries returns a copy of the day -> habit -> count mapping.
func (l *Ledger) Entries() map[string]map[string]int {
	out := make(map[string]map[string]int, len(l.counts))
	for day, bucket := range l.counts {
		m := make(map[string]int, len(bucket))
		for habitID, n := range bucket {
			m[habitID] = n
		}
		out[day] = m
	}
	return out
}

// FirstCompletions returns a copy of the day -> habit -> first completion mapping.
func (l *Ledger) FirstCompletions() map[string]map[string]time.Time {
	out := make(map[string]map[string]time.Time, len(l.firsts))
	for day, bucket := range l.firsts {
		m := make(map[string]time.Time, len(bucket))
		for habitID, at := range bucket {
			m[habitID] = at
		}
		out[day] = m
	}
	return out
}

// Clone returns an independent copy of l.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{counts: l.Entries(), firsts: l.FirstCompletions()}
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.counts)
}

func (l *Ledger) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	firsts := l.firsts
	*l = *FromEntries(raw, firsts)
	return nil
}
