package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/smartsteps/internal/backup"
	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/logger"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/scheduler"
	"github.com/julianstephens/smartsteps/internal/storage"
	"github.com/julianstephens/smartsteps/internal/storage/postgres"
	"github.com/julianstephens/smartsteps/internal/tracker"
)

// ErrNoFileBackups is returned by backup commands on a PostgreSQL store.
var ErrNoFileBackups = errors.New("backups are only available for file-based stores; use pg_dump for PostgreSQL")

type Context struct {
	Store     storage.Provider
	Scheduler *scheduler.Scheduler
	// ConfigDir holds logs and notifier state.
	ConfigDir string

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
	// In answers confirmation prompts. Defaults to os.Stdin.
	In io.Reader
	// Now and NewID override the clock and id source, mainly for tests.
	Now   func() time.Time
	NewID func() string
}

// Stdout returns where commands print.
func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Stdin returns where prompts read answers from.
func (c *Context) Stdin() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

// Confirm prints question with a [y/N] suffix and reports whether the
// answer was yes.
func (c *Context) Confirm(question string) (bool, error) {
	c.Printf("%s [y/N]: ", question)
	response, err := bufio.NewReader(c.Stdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// Printf writes formatted output to Stdout.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

// Println writes a line to Stdout.
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// Settings returns stored settings, or the defaults when none are stored.
func (c *Context) Settings() models.Settings {
	settings, err := c.Store.GetSettings()
	if err != nil {
		logger.Debug("Using default settings", "error", err)
		return models.DefaultSettings()
	}
	return settings
}

// ResolveLocation maps a timezone setting to a location. "Local", empty
// and unknown names resolve to the system zone.
func ResolveLocation(tz string) *time.Location {
	if tz == "" || tz == constants.DefaultTimezone {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logger.Warn("Unknown timezone, using local time", "timezone", tz, "error", err)
		return time.Local
	}
	return loc
}

// LoadTracker reads the stored state into a tracker.
func (c *Context) LoadTracker() (*tracker.Tracker, error) {
	raw, err := c.Store.LoadState()
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	return tracker.FromSnapshot(raw, tracker.Options{
		Now:      c.Now,
		Location: ResolveLocation(c.Settings().Timezone),
		NewID:    c.NewID,
	}), nil
}

// SaveTracker persists the tracker's full state.
func (c *Context) SaveTracker(t *tracker.Tracker) error {
	if err := c.Store.SaveState(t.Snapshot()); err != nil {
		return fmt.Errorf("failed to save habits: %w", err)
	}
	return nil
}

// BackupManager returns a backup manager for file-based stores.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*postgres.Store); ok {
		return nil, ErrNoFileBackups
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.BackupManager()
	if err != nil {
		logger.Debug("Skipping automatic backup", "reason", err)
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}
