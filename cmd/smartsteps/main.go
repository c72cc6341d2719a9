package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/cli/backups"
	"github.com/julianstephens/smartsteps/internal/cli/habits"
	"github.com/julianstephens/smartsteps/internal/cli/settings"
	"github.com/julianstephens/smartsteps/internal/cli/suggest"
	"github.com/julianstephens/smartsteps/internal/cli/system"
	"github.com/julianstephens/smartsteps/internal/constants"
	apperrors "github.com/julianstephens/smartsteps/internal/errors"
	"github.com/julianstephens/smartsteps/internal/keyring"
	"github.com/julianstephens/smartsteps/internal/logger"
	"github.com/julianstephens/smartsteps/internal/scheduler"
	"github.com/julianstephens/smartsteps/internal/storage"
	"github.com/julianstephens/smartsteps/internal/storage/postgres"
	"github.com/julianstephens/smartsteps/internal/utils"
)

var CLI struct {
	Version kong.VersionFlag `help:"Show version and exit."`
	Config  string           `help:"Store path (.db for SQLite, .json for a JSON document) or PostgreSQL connection string. Credentials must NOT be embedded in the connection string; use environment variables, .pgpass, or the OS keyring instead." type:"string" default:"${default_config}"`
	Debug   bool             `help:"Log debug output to stderr."`

	Init      system.InitCmd       `cmd:"" help:"Initialize smartsteps storage."`
	Migrate   system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Validate  system.ValidateCmd   `cmd:"" help:"Check habits and completions for conflicts."`
	Tui       system.TuiCmd        `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Habit     habits.HabitCmd      `cmd:"" help:"Manage habits."`
	Today     habits.TodayCmd      `cmd:"" help:"Show today's habits by time of day."`
	Next      habits.NextCmd       `cmd:"" help:"Show the next habit coming due."`
	Progress  habits.ProgressCmd   `cmd:"" help:"Show weekly progress and streaks."`
	Suggest   suggest.SuggestCmd   `cmd:"" help:"Browse and adopt suggested habits."`
	Challenge suggest.ChallengeCmd `cmd:"" help:"Show the daily challenge."`
	Backup    backups.BackupCmd    `cmd:"" help:"Manage store backups."`
	Settings  settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Keyring   system.KeyringCmd    `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Inspect   system.DebugCmd      `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Notify    system.NotifyCmd     `cmd:"" hidden:"" help:"Send due reminders (run from cron every minute)."`
}

// Commands that open the store themselves or never touch it.
var skipLoad = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Small daily habits with reminders, streaks and a daily challenge"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	store, configDir, err := openStore(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: configDir,
		Level:     os.Getenv(constants.EnvLogLevel),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	appCtx := &cli.Context{
		Store:     store,
		Scheduler: scheduler.New(),
		ConfigDir: configDir,
	}

	command := strings.Fields(ctx.Command())
	if len(command) > 0 && !skipLoad[command[0]] {
		if err := store.Load(); err != nil {
			apperrors.Fatal(fmt.Errorf("failed to load store: %w", err))
		}
	}
	defer store.Close()

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}

// openStore resolves --config into a store and the directory that holds logs
// and notifier state. A connection string from the environment or the OS
// keyring replaces the default path.
func openStore(config string) (storage.Provider, string, error) {
	loadDotEnv(config)

	if config == constants.DefaultConfigPath {
		if connStr, _ := keyring.ResolveConnectionString(os.Getenv(constants.EnvDBConnection)); connStr != "" {
			dir, err := userConfigDir()
			if err != nil {
				return nil, "", err
			}
			return postgres.New(connStr), dir, nil
		}
	}

	if utils.IsPostgresURL(config) {
		store, err := system.OpenSource(config)
		if err != nil {
			return nil, "", err
		}
		dir, err := userConfigDir()
		if err != nil {
			return nil, "", err
		}
		return store, dir, nil
	}

	path, err := utils.ExpandPath(config)
	if err != nil {
		return nil, "", err
	}
	store, err := system.OpenSource(path)
	if err != nil {
		return nil, "", err
	}
	return store, filepath.Dir(path), nil
}

// loadDotEnv reads .env files next to the store and in the working
// directory. Variables already set in the environment win.
func loadDotEnv(config string) {
	var files []string
	if !utils.IsPostgresURL(config) {
		if path, err := utils.ExpandPath(config); err == nil {
			files = append(files, filepath.Join(filepath.Dir(path), ".env"))
		}
	}
	files = append(files, ".env")

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to read %s: %v\n", f, err)
		}
	}
}

func userConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, constants.AppName), nil
}
