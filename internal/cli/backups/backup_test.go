package backups

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/scheduler"
	"github.com/julianstephens/smartsteps/internal/storage"
	"github.com/julianstephens/smartsteps/internal/storage/postgres"
	"github.com/julianstephens/smartsteps/internal/storage/sqlite"
)

func setupTestDB(t *testing.T, store storage.Provider) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	out := &bytes.Buffer{}
	return &cli.Context{
		Store:     store,
		Scheduler: scheduler.New(),
		Out:       out,
		Now:       func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local) },
	}, out
}

func addWater(t *testing.T, ctx *cli.Context) {
	t.Helper()
	tr, err := ctx.LoadTracker()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.AddSuggested("water"); err != nil {
		t.Fatal(err)
	}
	if err := ctx.SaveTracker(tr); err != nil {
		t.Fatal(err)
	}
}

func habitCount(t *testing.T, ctx *cli.Context) int {
	t.Helper()
	tr, err := ctx.LoadTracker()
	if err != nil {
		t.Fatal(err)
	}
	return len(tr.Habits())
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, out := setupTestDB(t, sqlite.NewStore(filepath.Join(t.TempDir(), "test.db")))

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No backups found") {
		t.Errorf("expected empty list, got %q", out.String())
	}

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "1 total") || !strings.Contains(out.String(), "smartsteps-") {
		t.Errorf("expected one backup listed, got %q", out.String())
	}
}

func TestBackupRestore(t *testing.T) {
	tests := []struct {
		name  string
		store func(dir string) storage.Provider
	}{
		{"sqlite", func(dir string) storage.Provider { return sqlite.NewStore(filepath.Join(dir, "test.db")) }},
		{"json", func(dir string) storage.Provider { return storage.NewJSONStore(filepath.Join(dir, "habits.json")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := setupTestDB(t, tt.store(t.TempDir()))

			if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
				t.Fatalf("create failed: %v", err)
			}
			name := strings.TrimSpace(strings.TrimPrefix(out.String(), "✓ Backup created:"))

			addWater(t, ctx)
			if habitCount(t, ctx) != 1 {
				t.Fatal("expected one habit before restore")
			}

			ctx.In = strings.NewReader("n\n")
			if err := (&BackupRestoreCmd{BackupFile: name}).Run(ctx); err != nil {
				t.Fatalf("restore failed: %v", err)
			}
			if habitCount(t, ctx) != 1 {
				t.Fatal("declined restore should change nothing")
			}

			out.Reset()
			ctx.In = strings.NewReader("y\n")
			if err := (&BackupRestoreCmd{BackupFile: name}).Run(ctx); err != nil {
				t.Fatalf("restore failed: %v", err)
			}
			if habitCount(t, ctx) != 0 {
				t.Error("restore should bring back the empty store")
			}
			if !strings.Contains(out.String(), "Previous state saved as") {
				t.Errorf("expected pre-restore backup notice, got %q", out.String())
			}
		})
	}
}

func TestBackupRestore_NotFound(t *testing.T) {
	ctx, _ := setupTestDB(t, sqlite.NewStore(filepath.Join(t.TempDir(), "test.db")))

	err := (&BackupRestoreCmd{BackupFile: "smartsteps-19990101-000000.db", Yes: true}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "backup not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestBackupCommands_Postgres(t *testing.T) {
	ctx := &cli.Context{Store: postgres.New("postgres://localhost/smartsteps?sslmode=disable")}

	for name, cmd := range map[string]interface{ Run(*cli.Context) error }{
		"create":  &BackupCreateCmd{},
		"list":    &BackupListCmd{},
		"restore": &BackupRestoreCmd{BackupFile: "x", Yes: true},
	} {
		if err := cmd.Run(ctx); !errors.Is(err, cli.ErrNoFileBackups) {
			t.Errorf("%s: expected ErrNoFileBackups, got %v", name, err)
		}
	}
}
