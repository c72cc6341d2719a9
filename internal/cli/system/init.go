package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/storage"
	"github.com/julianstephens/smartsteps/internal/storage/postgres"
	"github.com/julianstephens/smartsteps/internal/storage/sqlite"
	"github.com/julianstephens/smartsteps/internal/utils"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing store before initialization."`
	Source string `help:"Store path or PostgreSQL connection string to copy habits and settings from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		if !errors.Is(err, storage.ErrAlreadyExists) {
			return err
		}
		if err := ctx.Store.Load(); err != nil {
			return err
		}
		ctx.Printf("Storage already initialized at: %s\n", ctx.Store.GetConfigPath())
	} else {
		ctx.Printf("Initialized smartsteps storage at: %s\n", ctx.Store.GetConfigPath())
	}

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}

	return nil
}

// reset deletes a file-based store. PostgreSQL stores are left alone.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*postgres.Store); ok {
		return errors.New("--force is not supported for PostgreSQL; drop the smartsteps schema manually")
	}

	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, errDB := filepath.Abs(dbPath)
		absSource, errSource := filepath.Abs(c.Source)
		if errDB == nil && errSource == nil && absDB == absSource {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		// Close first so the file is not held open.
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing store: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing store: %w", err)
		}
		ctx.Printf("Deleted existing store at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing store: %w", err)
	}
	return nil
}

// OpenSource picks a store implementation from a path or connection string.
func OpenSource(source string) (storage.Provider, error) {
	switch {
	case utils.IsPostgresURL(source):
		if err := postgres.ValidateConnString(source); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(source), nil
	case strings.EqualFold(filepath.Ext(source), ".json"):
		return storage.NewJSONStore(source), nil
	default:
		return sqlite.NewStore(source), nil
	}
}

func (c *InitCmd) copyFrom(ctx *cli.Context, source string) error {
	sourceStore, err := OpenSource(source)
	if err != nil {
		return err
	}
	if err := sourceStore.Load(); err != nil {
		return fmt.Errorf("failed to load source store: %w", err)
	}
	defer sourceStore.Close()

	ctx.Println("  Copying settings...")
	settings, err := sourceStore.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	// State goes through the tracker so older layouts are upgraded on the way.
	ctx.Println("  Copying habits...")
	src := &cli.Context{Store: sourceStore, Now: ctx.Now, NewID: ctx.NewID}
	t, err := src.LoadTracker()
	if err != nil {
		return err
	}
	if err := ctx.SaveTracker(t); err != nil {
		return err
	}

	days := len(t.Ledger().Days())
	ctx.Printf("    Copied %d habits, %d suggestions and %d day(s) of completions\n", len(t.Habits()), len(t.Suggested()), days)
	return nil
}
