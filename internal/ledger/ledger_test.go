package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/smartsteps/internal/models"
)

var noon = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func habit(id string, repeats int) models.Habit {
	return models.Habit{ID: id, Title: id, DailyRepeats: repeats, ScheduleType: models.ScheduleExact, ExactTime: "08:00 AM"}
}

func TestIncrementCapsAtDailyRepeats(t *testing.T) {
	l := New()
	for range 4 {
		l.Increment("h1", "2025-06-10", 3, noon)
	}

	assert.Equal(t, 3, l.CountFor("h1", "2025-06-10"))
	assert.True(t, l.IsDone("h1", "2025-06-10", 3))
}

func TestIncrementMonotonicCap(t *testing.T) {
	for k := 1; k <= 5; k++ {
		l := New()
		for i := 0; i < k*3; i++ {
			got := l.Increment("h", "2025-06-10", k, noon)
			assert.LessOrEqual(t, got, k)
		}
		assert.Equal(t, k, l.CountFor("h", "2025-06-10"))
	}
}

func TestIncrementZeroRepeatsTreatedAsOne(t *testing.T) {
	l := New()
	l.Increment("h", "2025-06-10", 0, noon)
	l.Increment("h", "2025-06-10", 0, noon)
	assert.Equal(t, 1, l.CountFor("h", "2025-06-10"))
	assert.True(t, l.IsDone("h", "2025-06-10", 0))
}

func TestIncrementZeroValueLedger(t *testing.T) {
	var l Ledger
	assert.Equal(t, 1, l.Increment("h", "2025-06-10", 2, noon))
}

func TestFirstCompletionRecordedOnce(t *testing.T) {
	l := New()
	first := noon
	later := noon.Add(2 * time.Hour)

	_, ok := l.FirstCompletion("h", "2025-06-10")
	assert.False(t, ok)

	l.Increment("h", "2025-06-10", 3, first)
	l.Increment("h", "2025-06-10", 3, later)

	at, ok := l.FirstCompletion("h", "2025-06-10")
	require.True(t, ok)
	assert.Equal(t, first, at)
}

func TestRemoveHabitClearsEveryBucket(t *testing.T) {
	l := New()
	days := []string{"2025-06-08", "2025-06-09", "2025-06-10"}
	for _, d := range days {
		l.Increment("gone", d, 1, noon)
		l.Increment("kept", d, 1, noon)
	}

	l.RemoveHabit("gone")

	for _, d := range days {
		assert.Equal(t, 0, l.CountFor("gone", d), "day %s", d)
		assert.Equal(t, 1, l.CountFor("kept", d), "day %s", d)
		_, ok := l.FirstCompletion("gone", d)
		assert.False(t, ok)
	}
	assert.Equal(t, []string{"kept"}, l.HabitIDs())
}

func TestRemoveHabitKeepsEmptyBuckets(t *testing.T) {
	l := New()
	l.Increment("only", "2025-06-10", 1, noon)
	l.RemoveHabit("only")

	entries := l.Entries()
	bucket, ok := entries["2025-06-10"]
	require.True(t, ok)
	assert.Empty(t, bucket)
}

func TestFromEntriesCoercion(t *testing.T) {
	l := FromEntries(map[string]map[string]any{
		"2025-06-10": {
			"bool-true":  true,
			"bool-false": false,
			"int":        2,
			"float":      float64(3),
			"string":     "4",
			"negative":   -2,
			"garbage":    []string{"x"},
			"nil":        nil,
			"number":     json.Number("5"),
		},
	}, nil)

	tests := map[string]int{
		"bool-true":  1,
		"bool-false": 0,
		"int":        2,
		"float":      3,
		"string":     4,
		"negative":   0,
		"garbage":    0,
		"nil":        0,
		"number":     5,
		"missing":    0,
	}
	for id, want := range tests {
		assert.Equal(t, want, l.CountFor(id, "2025-06-10"), id)
	}
}

func TestUnmarshalLegacyBooleans(t *testing.T) {
	var l Ledger
	err := json.Unmarshal([]byte(`{"2025-06-09":{"a":true,"b":false},"2025-06-10":{"a":2}}`), &l)
	require.NoError(t, err)

	assert.Equal(t, 1, l.CountFor("a", "2025-06-09"))
	assert.Equal(t, 0, l.CountFor("b", "2025-06-09"))
	assert.Equal(t, 2, l.CountFor("a", "2025-06-10"))

	out, err := json.Marshal(&l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2025-06-09":{"a":1,"b":0},"2025-06-10":{"a":2}}`, string(out))
}

func TestCloneIsIndependent(t *testing.T) {
	l := New()
	l.Increment("h", "2025-06-10", 2, noon)

	c := l.Clone()
	c.Increment("h", "2025-06-10", 2, noon)

	assert.Equal(t, 1, l.CountFor("h", "2025-06-10"))
	assert.Equal(t, 2, c.CountFor("h", "2025-06-10"))
}

func TestWeeklyProgress(t *testing.T) {
	t.Run("no habits", func(t *testing.T) {
		assert.Equal(t, 0.0, New().WeeklyProgress(nil, noon))
	})

	t.Run("partial", func(t *testing.T) {
		l := New()
		active := []models.Habit{habit("a", 1), habit("b", 2)}
		l.Increment("a", "2025-06-10", 1, noon)
		l.Increment("a", "2025-06-04", 1, noon)
		// Outside the seven-day window.
		l.Increment("a", "2025-06-03", 1, noon)
		// b needs two completions.
		l.Increment("b", "2025-06-09", 2, noon)
		l.Increment("b", "2025-06-08", 2, noon)
		l.Increment("b", "2025-06-08", 2, noon)

		assert.InDelta(t, 3.0/14.0, l.WeeklyProgress(active, noon), 1e-9)
	})

	t.Run("full", func(t *testing.T) {
		l := New()
		active := []models.Habit{habit("a", 1)}
		for i := range 7 {
			l.Increment("a", noon.AddDate(0, 0, -i).Format("2006-01-02"), 1, noon)
		}
		assert.Equal(t, 1.0, l.WeeklyProgress(active, noon))
	})
}

func TestDailySeries(t *testing.T) {
	l := New()
	active := []models.Habit{habit("a", 1), habit("b", 1)}
	l.Increment("a", "2025-06-10", 1, noon)
	l.Increment("b", "2025-06-10", 1, noon)
	l.Increment("a", "2025-06-09", 1, noon)

	series := l.DailySeries(active, noon, 3)
	require.Len(t, series, 3)
	assert.Equal(t, DayProgress{Date: "2025-06-08", Done: 0, Total: 2, Ratio: 0}, series[0])
	assert.Equal(t, DayProgress{Date: "2025-06-09", Done: 1, Total: 2, Ratio: 0.5}, series[1])
	assert.Equal(t, DayProgress{Date: "2025-06-10", Done: 2, Total: 2, Ratio: 1}, series[2])
}

func TestStreak(t *testing.T) {
	active := []models.Habit{habit("a", 1)}

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0, New().Streak(active, noon))
	})

	t.Run("today counts", func(t *testing.T) {
		l := New()
		for _, d := range []string{"2025-06-08", "2025-06-09", "2025-06-10"} {
			l.Increment("a", d, 1, noon)
		}
		assert.Equal(t, 3, l.Streak(active, noon))
	})

	t.Run("unfinished today does not break", func(t *testing.T) {
		l := New()
		for _, d := range []string{"2025-06-08", "2025-06-09"} {
			l.Increment("a", d, 1, noon)
		}
		assert.Equal(t, 2, l.Streak(active, noon))
	})

	t.Run("gap ends streak", func(t *testing.T) {
		l := New()
		for _, d := range []string{"2025-06-05", "2025-06-06", "2025-06-09", "2025-06-10"} {
			l.Increment("a", d, 1, noon)
		}
		assert.Equal(t, 2, l.Streak(active, noon))
	})
}

func TestTotalCompletions(t *testing.T) {
	l := New()
	l.Increment("a", "2025-06-09", 3, noon)
	l.Increment("a", "2025-06-10", 3, noon)
	l.Increment("a", "2025-06-10", 3, noon)
	l.Increment("orphan", "2025-06-10", 1, noon)

	assert.Equal(t, 3, l.TotalCompletions([]models.Habit{habit("a", 3)}))
}
