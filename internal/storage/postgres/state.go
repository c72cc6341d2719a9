package postgres

import (
	"github.com/julianstephens/smartsteps/internal/storage"
	"github.com/julianstephens/smartsteps/internal/tracker"
)

func (s *Store) LoadState() (tracker.RawSnapshot, error) {
	if s.db == nil {
		return tracker.RawSnapshot{}, storage.ErrNotInitialized
	}
	return storage.LoadStateSQL(s.db)
}

func (s *Store) SaveState(snap tracker.Snapshot) error {
	if s.db == nil {
		return storage.ErrNotInitialized
	}
	return storage.SaveStateSQL(s.db, storage.DialectPostgres, snap)
}
