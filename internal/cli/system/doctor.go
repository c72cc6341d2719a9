package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/smartsteps/internal/cli"
	apperrors "github.com/julianstephens/smartsteps/internal/errors"
	"github.com/julianstephens/smartsteps/internal/storage"
)

type DoctorCmd struct{}

// exitChecksFailed is the process exit code when any doctor check fails.
const exitChecksFailed = 2

type check struct {
	name string
	run  func(ctx *cli.Context) error
	// warnOnly checks report a warning instead of failing the run.
	warnOnly bool
	// needsStore checks are skipped when the store cannot be loaded.
	needsStore bool
}

var doctorChecks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsStore: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Settings", run: checkSettings, needsStore: true},
	{name: "Data validation", run: checkValidation, needsStore: true},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Store reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Store reachable: OK\n")
		dbReachable = true
	}

	for _, c := range doctorChecks {
		if c.needsStore && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return apperrors.WithExitCode(errors.New("one or more health checks failed"), exitChecksFailed)
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if _, err := ctx.Store.LoadState(); err != nil {
		return fmt.Errorf("failed to read habits: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	migrator, ok := ctx.Store.(storage.Migrator)
	if !ok {
		// Document stores upgrade on load.
		return nil
	}

	current, latest, err := migrator.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d; run 'smartsteps migrate'", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'smartsteps backup create'")
	}

	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.Timezone != "" && settings.Timezone != "Local" {
		if _, err := time.LoadLocation(settings.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q, local time is used instead", settings.Timezone)
		}
	}
	if settings.NotificationGracePeriodMin < 1 {
		return fmt.Errorf("notification grace period must be at least 1 minute, got %d", settings.NotificationGracePeriodMin)
	}
	if settings.DefaultSnoozeMin < 1 {
		return fmt.Errorf("default snooze must be at least 1 minute, got %d", settings.DefaultSnoozeMin)
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	t, err := ctx.LoadTracker()
	if err != nil {
		return err
	}
	result := t.Validate()
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found; run 'smartsteps validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if ctx.Now != nil {
		now = ctx.Now()
	}

	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	return nil
}
