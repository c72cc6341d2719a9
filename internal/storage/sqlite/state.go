package sqlite

import (
	"fmt"

	"github.com/julianstephens/smartsteps/internal/storage"
	"github.com/julianstephens/smartsteps/internal/tracker"
)

func (s *Store) LoadState() (tracker.RawSnapshot, error) {
	if s.db == nil {
		return tracker.RawSnapshot{}, storage.ErrNotInitialized
	}
	ok, err := s.tableExists("habits")
	if err != nil {
		return tracker.RawSnapshot{}, err
	}
	if !ok {
		return tracker.RawSnapshot{}, fmt.Errorf("habits table missing, run 'smartsteps migrate'")
	}
	return storage.LoadStateSQL(s.db)
}

func (s *Store) SaveState(snap tracker.Snapshot) error {
	if s.db == nil {
		return storage.ErrNotInitialized
	}
	return storage.SaveStateSQL(s.db, storage.DialectSQLite, snap)
}
