package settings

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/scheduler"
	"github.com/julianstephens/smartsteps/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:     store,
		Scheduler: scheduler.New(),
		Out:       out,
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}

	return ctx, out, cleanup
}

func TestSettingsCmd_List(t *testing.T) {
	ctx, out, cleanup := setupTestDB(t)
	defer cleanup()

	cmd := &SettingsCmd{
		List: true,
	}

	err := cmd.Run(ctx)
	if err != nil {
		t.Errorf("settings list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Timezone:              Local") {
		t.Errorf("expected default timezone in listing, got:\n%s", out.String())
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx, _, cleanup := setupTestDB(t)
	defer cleanup()

	tz := "UTC"
	enabled := false
	grace := 5
	snooze := 15
	cmd := &SettingsCmd{
		Timezone:             &tz,
		NotificationsEnabled: &enabled,
		GracePeriod:          &grace,
		SnoozeMin:            &snooze,
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	if settings.Timezone != tz {
		t.Errorf("expected timezone %s, got %s", tz, settings.Timezone)
	}
	if settings.NotificationsEnabled {
		t.Error("expected notifications disabled")
	}
	if settings.NotificationGracePeriodMin != grace {
		t.Errorf("expected grace %d, got %d", grace, settings.NotificationGracePeriodMin)
	}
	if settings.DefaultSnoozeMin != snooze {
		t.Errorf("expected snooze %d, got %d", snooze, settings.DefaultSnoozeMin)
	}
}

func TestSettingsCmd_Invalid(t *testing.T) {
	badTZ := "Mars/Olympus"
	zero := 0
	tooLong := constants.MinutesPerDay + 1

	tests := []struct {
		name string
		cmd  SettingsCmd
	}{
		{"timezone", SettingsCmd{Timezone: &badTZ}},
		{"grace", SettingsCmd{GracePeriod: &zero}},
		{"snooze", SettingsCmd{SnoozeMin: &tooLong}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, cleanup := setupTestDB(t)
			defer cleanup()

			if err := tt.cmd.Run(ctx); err == nil {
				t.Fatal("expected error")
			}
			settings, err := ctx.Store.GetSettings()
			if err != nil {
				t.Fatalf("failed to get settings: %v", err)
			}
			if settings.Timezone != constants.DefaultTimezone || settings.DefaultSnoozeMin != constants.DefaultSnoozeMin {
				t.Errorf("invalid input should not be saved: %+v", settings)
			}
		})
	}
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx, out, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&SettingsCmd{}).Run(ctx); err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	if !strings.Contains(out.String(), "No changes specified") {
		t.Errorf("unexpected output: %q", out.String())
	}
}
