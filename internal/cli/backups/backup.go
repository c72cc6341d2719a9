package backups

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/constants"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Create a backup now."`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore the store from a backup."`
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	ctx.Printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		ctx.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), b.Name(), sizeKB)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.GetBackupDir())

	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}

	// A file in the working directory wins over one in the backup directory.
	backupPath := c.BackupFile
	if _, err := os.Stat(backupPath); err == nil {
		if backupPath, err = filepath.Abs(backupPath); err != nil {
			return fmt.Errorf("failed to resolve backup path: %w", err)
		}
	} else if backupPath, err = mgr.Find(c.BackupFile); err != nil {
		return fmt.Errorf("%w (looked in the current directory and %s)", err, mgr.GetBackupDir())
	}

	ctx.Println("⚠️  WARNING: This will replace your current habits and settings with the backup.")
	ctx.Println("⚠️  IMPORTANT: Close the smartsteps TUI before restoring.")
	ctx.Println("A backup of your current store will be created before restoring.")
	ctx.Printf("\nRestore from: %s\n", backupPath)

	if !c.Yes {
		ok, err := ctx.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		ctx.Printf("Warning: failed to close the store: %v\n", err)
	}

	preRestore, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("restored store could not be loaded: %w", err)
	}

	ctx.Println("✓ Store restored successfully!")
	if preRestore != "" {
		ctx.Printf("  Previous state saved as %s\n", filepath.Base(preRestore))
	}
	return nil
}
