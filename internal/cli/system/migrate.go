package system

import (
	"fmt"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/storage"
)

type MigrateCmd struct {
	Status bool `help:"Report the schema version without applying anything."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	migrator, ok := ctx.Store.(storage.Migrator)
	if !ok {
		ctx.Println("This store has no schema to migrate; stored habits are upgraded when they are loaded.")
		return nil
	}

	if c.Status {
		current, latest, err := migrator.SchemaVersion()
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		ctx.Printf("Schema version: %d (latest %d)\n", current, latest)
		switch {
		case current < latest:
			ctx.Printf("%d migration(s) pending; run 'smartsteps migrate' to apply.\n", latest-current)
		case current > latest:
			ctx.Println("The database is ahead of this build; upgrade smartsteps.")
		default:
			ctx.Println("Up to date.")
		}
		return nil
	}

	applied, err := migrator.Migrate(func(msg string) { ctx.Println(msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if applied > 0 {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", applied)
	}
	return nil
}
