package storage

import (
	"errors"

	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/tracker"
)

var (
	ErrNotInitialized   = errors.New("storage not initialized, run 'smartsteps init' first")
	ErrAlreadyExists    = errors.New("storage already initialized")
	ErrSettingsNotFound = errors.New("settings not found")
	ErrSchemaOutdated   = errors.New("database schema is outdated")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// State. LoadState returns what was stored without normalizing it;
	// tracker.FromSnapshot does that. SaveState replaces the stored state as
	// a whole.
	LoadState() (tracker.RawSnapshot, error)
	SaveState(tracker.Snapshot) error

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by providers backed by a versioned SQL schema.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}
