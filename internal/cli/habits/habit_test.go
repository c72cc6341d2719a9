package habits

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/scheduler"
	"github.com/julianstephens/smartsteps/internal/storage/sqlite"
	"github.com/julianstephens/smartsteps/internal/tracker"
	"github.com/julianstephens/smartsteps/internal/validation"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	n := 0
	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:     store,
		Scheduler: scheduler.New(),
		Out:       out,
		Now: func() time.Time {
			return time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)
		},
		NewID: func() string {
			n++
			return fmt.Sprintf("habit-%d", n)
		},
	}
	return ctx, out
}

func loadTracker(t *testing.T, ctx *cli.Context) *tracker.Tracker {
	t.Helper()
	tr, err := ctx.LoadTracker()
	if err != nil {
		t.Fatalf("failed to load tracker: %v", err)
	}
	return tr
}

func addHabit(t *testing.T, ctx *cli.Context, title, at string, repeats int) {
	t.Helper()
	cmd := &HabitAddCmd{Title: title, ScheduleFlags: ScheduleFlags{Time: at, Repeats: repeats}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("failed to add habit %q: %v", title, err)
	}
}

func TestHabitAddCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	addHabit(t, ctx, "Beber agua", "7:30 am", 3)

	habits := loadTracker(t, ctx).Habits()
	if len(habits) != 1 {
		t.Fatalf("expected 1 habit, got %d", len(habits))
	}
	h := habits[0]
	if h.ID != "habit-1" {
		t.Errorf("expected generated id habit-1, got %s", h.ID)
	}
	if h.ExactTime != "07:30 AM" {
		t.Errorf("expected normalized time 07:30 AM, got %s", h.ExactTime)
	}
	if h.DailyRepeats != 3 {
		t.Errorf("expected 3 repeats, got %d", h.DailyRepeats)
	}
	if h.StartDate != "2025-06-10" {
		t.Errorf("expected start date today, got %s", h.StartDate)
	}
	if !strings.Contains(out.String(), "Added habit") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestHabitAddCmd_Offset(t *testing.T) {
	ctx, _ := setupTestDB(t)

	offset := 45
	cmd := &HabitAddCmd{Title: "Estirar", ScheduleFlags: ScheduleFlags{Offset: &offset}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	h := loadTracker(t, ctx).Habits()[0]
	if !h.IsOffset() || h.Offset() != 45 {
		t.Errorf("expected offset habit of 45 minutes, got %+v", h)
	}
	if h.ExactTime != "" {
		t.Errorf("offset habit should have no exact time, got %q", h.ExactTime)
	}
}

func TestHabitAddCmd_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		flags ScheduleFlags
	}{
		{"bad time", ScheduleFlags{Time: "25:00"}},
		{"bad start", ScheduleFlags{Start: "2025-13-01"}},
		{"end before start", ScheduleFlags{Start: "2025-06-10", End: "2025-06-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestDB(t)
			cmd := &HabitAddCmd{Title: "Leer", ScheduleFlags: tt.flags}
			if err := cmd.Run(ctx); err == nil {
				t.Fatal("expected validation error")
			}
			if n := len(loadTracker(t, ctx).Habits()); n != 0 {
				t.Errorf("invalid habit should not be saved, found %d", n)
			}
		})
	}
}

func TestHabitEditCmd(t *testing.T) {
	ctx, _ := setupTestDB(t)
	addHabit(t, ctx, "Leer", "09:00 PM", 1)

	end := "2025-07-01"
	cmd := &HabitEditCmd{Habit: "leer", Title: "Leer 10 páginas", ScheduleFlags: ScheduleFlags{End: end, Repeats: 2}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	h, ok := loadTracker(t, ctx).Habit("habit-1")
	if !ok {
		t.Fatal("habit disappeared after edit")
	}
	if h.Title != "Leer 10 páginas" || h.DailyRepeats != 2 {
		t.Errorf("edit not applied: %+v", h)
	}
	if h.EndDate == nil || *h.EndDate != end {
		t.Errorf("expected end date %s, got %v", end, h.EndDate)
	}
	if h.ExactTime != "09:00 PM" {
		t.Errorf("untouched fields should survive, got time %s", h.ExactTime)
	}

	clearEnd := &HabitEditCmd{Habit: "habit-1", ScheduleFlags: ScheduleFlags{End: "none"}}
	if err := clearEnd.Run(ctx); err != nil {
		t.Fatalf("clearing end date failed: %v", err)
	}
	h, _ = loadTracker(t, ctx).Habit("habit-1")
	if h.EndDate != nil {
		t.Errorf("expected end date cleared, got %s", *h.EndDate)
	}
}

func TestHabitEditCmd_StartAfterExistingEnd(t *testing.T) {
	ctx, _ := setupTestDB(t)
	add := &HabitAddCmd{Title: "Leer", ScheduleFlags: ScheduleFlags{Time: "09:00 PM", Start: "2025-06-01", End: "2025-06-30"}}
	if err := add.Run(ctx); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	cmd := &HabitEditCmd{Habit: "Leer", ScheduleFlags: ScheduleFlags{Start: "2025-07-15"}}
	err := cmd.Run(ctx)
	if !errors.Is(err, validation.ErrEndBeforeStart) {
		t.Fatalf("expected end-before-start error, got %v", err)
	}

	h, _ := loadTracker(t, ctx).Habit("habit-1")
	if h.StartDate != "2025-06-01" {
		t.Errorf("rejected edit was saved: start %s", h.StartDate)
	}
}

func TestHabitEditCmd_NotFound(t *testing.T) {
	ctx, _ := setupTestDB(t)

	cmd := &HabitEditCmd{Habit: "missing", Title: "x"}
	if err := cmd.Run(ctx); err == nil {
		t.Error("expected error for unknown habit")
	}
}

func TestHabitDoneCmd(t *testing.T) {
	ctx, out := setupTestDB(t)
	addHabit(t, ctx, "Beber agua", "08:00 AM", 2)

	done := &HabitDoneCmd{Habit: "Beber agua"}
	for range 3 {
		if err := done.Run(ctx); err != nil {
			t.Fatalf("done failed: %v", err)
		}
	}

	tr := loadTracker(t, ctx)
	if got := tr.TodayCount("habit-1"); got != 2 {
		t.Errorf("count should cap at repeats, got %d", got)
	}
	if !tr.IsDoneToday("habit-1") {
		t.Error("habit should be done today")
	}
	if !strings.Contains(out.String(), "already done") {
		t.Errorf("expected already-done notice, got %q", out.String())
	}
}

func TestHabitSnoozeCmd(t *testing.T) {
	ctx, _ := setupTestDB(t)
	addHabit(t, ctx, "Caminar", "11:55 PM", 1)

	cmd := &HabitSnoozeCmd{Habit: "habit-1"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("snooze failed: %v", err)
	}

	// The default snooze setting is 10 minutes and wraps past midnight.
	h, _ := loadTracker(t, ctx).Habit("habit-1")
	if h.ExactTime != "12:05 AM" {
		t.Errorf("expected 12:05 AM, got %s", h.ExactTime)
	}

	cmd = &HabitSnoozeCmd{Habit: "habit-1", Minutes: 30}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("snooze failed: %v", err)
	}
	h, _ = loadTracker(t, ctx).Habit("habit-1")
	if h.ExactTime != "12:35 AM" {
		t.Errorf("expected 12:35 AM, got %s", h.ExactTime)
	}
}

func TestHabitSnoozeCmd_Offset(t *testing.T) {
	ctx, _ := setupTestDB(t)
	offset := 30
	add := &HabitAddCmd{Title: "Estirar", ScheduleFlags: ScheduleFlags{Offset: &offset}}
	if err := add.Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	cmd := &HabitSnoozeCmd{Habit: "Estirar"}
	if err := cmd.Run(ctx); err == nil {
		t.Error("expected snoozing an offset habit to fail")
	}
}

func TestHabitDeleteCmd(t *testing.T) {
	ctx, _ := setupTestDB(t)
	addHabit(t, ctx, "Leer", "09:00 PM", 1)
	addHabit(t, ctx, "Caminar", "06:00 PM", 1)
	if err := (&HabitDoneCmd{Habit: "Leer"}).Run(ctx); err != nil {
		t.Fatalf("done failed: %v", err)
	}

	cmd := &HabitDeleteCmd{Habit: "Leer"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	tr := loadTracker(t, ctx)
	if len(tr.Habits()) != 1 || tr.Habits()[0].Title != "Caminar" {
		t.Errorf("unexpected habits after delete: %+v", tr.Habits())
	}
	if tr.TodayCount("habit-1") != 0 {
		t.Error("completions should be removed with the habit")
	}

	backupDir := filepath.Join(filepath.Dir(ctx.Store.GetConfigPath()), constants.BackupDirName)
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatalf("expected automatic backup directory: %v", err)
	}
	if len(entries) == 0 {
		t.Error("expected an automatic backup before delete")
	}
}

func TestHabitListCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&HabitListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No habits yet") {
		t.Errorf("expected empty notice, got %q", out.String())
	}

	addHabit(t, ctx, "Leer", "09:00 PM", 1)
	out.Reset()
	if err := (&HabitListCmd{IDs: true}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Leer") || !strings.Contains(out.String(), "(habit-1)") {
		t.Errorf("unexpected list output: %q", out.String())
	}
}

func TestTodayCmd(t *testing.T) {
	ctx, out := setupTestDB(t)
	addHabit(t, ctx, "Beber agua", "08:00 AM", 1)
	addHabit(t, ctx, "Leer", "09:00 PM", 1)

	if err := (&TodayCmd{}).Run(ctx); err != nil {
		t.Fatalf("today failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Mañana", "Noche", "Beber agua", "Leer", "Reto del día"} {
		if !strings.Contains(got, want) {
			t.Errorf("today output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "Mañana") > strings.Index(got, "Noche") {
		t.Errorf("buckets out of order:\n%s", got)
	}
}

func TestNextCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&NextCmd{}).Run(ctx); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if !strings.Contains(out.String(), "No upcoming habits") {
		t.Errorf("unexpected output: %q", out.String())
	}

	addHabit(t, ctx, "Beber agua", "08:00 AM", 1)
	addHabit(t, ctx, "Caminar", "10:30 AM", 1)
	out.Reset()
	if err := (&NextCmd{}).Run(ctx); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if !strings.Contains(out.String(), "Caminar") || !strings.Contains(out.String(), "in 1h 30min") {
		t.Errorf("unexpected next output: %q", out.String())
	}
}

func TestProgressCmd(t *testing.T) {
	ctx, out := setupTestDB(t)
	addHabit(t, ctx, "Beber agua", "08:00 AM", 1)
	if err := (&HabitDoneCmd{Habit: "Beber agua"}).Run(ctx); err != nil {
		t.Fatalf("done failed: %v", err)
	}

	if err := (&ProgressCmd{Days: 3}).Run(ctx); err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Current streak:  1 day(s)") {
		t.Errorf("expected streak of 1:\n%s", got)
	}
	if !strings.Contains(got, "2025-06-10") || !strings.Contains(got, "2025-06-08") {
		t.Errorf("expected three charted days:\n%s", got)
	}
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{5, "5 min"},
		{60, "1h"},
		{95, "1h 35min"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.minutes); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
