package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/models"
	"github.com/julianstephens/smartsteps/internal/tracker"
)

// document is the on-disk layout. State is a tracker.Snapshot on write and
// is decoded into a tracker.RawSnapshot on read.
type document struct {
	Version  int             `json:"version"`
	Settings models.Settings `json:"settings"`
	State    any             `json:"state"`
}

type rawDocument struct {
	Version  int                 `json:"version"`
	Settings *models.Settings    `json:"settings"`
	State    tracker.RawSnapshot `json:"state"`
}

// JSONStore keeps settings and state in a single JSON file. Writes go to a
// temporary file that is renamed into place.
type JSONStore struct {
	path     string
	loaded   bool
	settings models.Settings
	state    tracker.RawSnapshot
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("%w at %s", ErrAlreadyExists, s.path)
	}

	s.settings = models.DefaultSettings()
	s.state = tracker.RawSnapshot{Version: constants.SnapshotVersion}
	s.loaded = true

	return s.save(tracker.Snapshot{Version: constants.SnapshotVersion})
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	s.settings = models.DefaultSettings()
	if doc.Settings != nil {
		s.settings = *doc.Settings
	}
	s.state = doc.State
	s.loaded = true

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save(state any) error {
	data, err := json.MarshalIndent(document{
		Version:  constants.SnapshotVersion,
		Settings: s.settings,
		State:    state,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	if !s.loaded {
		return models.Settings{}, fmt.Errorf("storage not loaded")
	}
	return s.settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	if !s.loaded {
		return fmt.Errorf("storage not loaded")
	}
	s.settings = settings
	// Stored state stays raw until the tracker normalizes it.
	return s.save(s.state)
}

func (s *JSONStore) LoadState() (tracker.RawSnapshot, error) {
	if !s.loaded {
		return tracker.RawSnapshot{}, fmt.Errorf("storage not loaded")
	}
	return s.state, nil
}

func (s *JSONStore) SaveState(snap tracker.Snapshot) error {
	if !s.loaded {
		return fmt.Errorf("storage not loaded")
	}
	if err := s.save(snap); err != nil {
		return err
	}
	s.state = snap.Raw()
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
