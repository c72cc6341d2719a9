package postgres

import (
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/storage"
)

func (s *Store) GetSettings() (models.Settings, error) {
	if s.db == nil {
		return models.Settings{}, storage.ErrNotInitialized
	}
	return storage.LoadSettingsSQL(s.db)
}

// SaveSettings upserts every settings key in one transaction.
func (s *Store) SaveSettings(settings models.Settings) error {
	if s.db == nil {
		return storage.ErrNotInitialized
	}
	return storage.SaveSettingsSQL(s.db, storage.DialectPostgres, settings)
}
