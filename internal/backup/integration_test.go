package backup

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/smartsteps/internal/storage/sqlite"
	"github.com/julianstephens/smartsteps/internal/tracker"
)

// TestIntegrationBackupRestoreWorkflow backs up a real store, changes it, and
// restores the earlier state.
func TestIntegrationBackupRestoreWorkflow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "smartsteps.db")
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	opts := tracker.Options{Now: func() time.Time { return now }, Location: time.UTC}

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	tr := tracker.New(opts)
	if _, err := tr.AddSuggested("water"); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	if err := store.SaveState(tr.Snapshot()); err != nil {
		t.Fatalf("failed to save state: %v", err)
	}
	store.Close()

	mgr := NewManager(dbPath)
	mgr.now = steppingClock(now)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	store = sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	raw, err := store.LoadState()
	if err != nil {
		t.Fatalf("failed to load state: %v", err)
	}
	tr = tracker.FromSnapshot(raw, opts)
	if _, err := tr.AddSuggested("read10"); err != nil {
		t.Fatalf("failed to add second habit: %v", err)
	}
	if err := store.SaveState(tr.Snapshot()); err != nil {
		t.Fatalf("failed to save state: %v", err)
	}
	store.Close()

	if _, err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("failed to restore backup: %v", err)
	}

	store = sqlite.NewStore(dbPath)
	defer store.Close()
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load restored store: %v", err)
	}
	raw, err = store.LoadState()
	if err != nil {
		t.Fatalf("failed to load restored state: %v", err)
	}
	if len(raw.Active) != 1 || raw.Active[0].ID != "water" {
		t.Errorf("restored habits = %+v, want only water", raw.Active)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("failed to list backups: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected the original and the pre-restore backup, got %d", len(backups))
	}
}
