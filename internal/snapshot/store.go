// Package snapshot saves resolved plans and compares them across builds.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kingrea/legion/schedule"
)

// ErrSnapshotNotFound is returned when no plan has been saved yet.
var ErrSnapshotNotFound = errors.New("snapshot: not found")

const currentVersion = 1

// Snapshot is a saved plan plus the definition files it was built from.
type Snapshot struct {
	Version int           `json:"version"`
	SavedAt time.Time     `json:"saved_at"`
	Sources []string      `json:"sources,omitempty"`
	Plan    schedule.Plan `json:"plan"`
}

// New stamps plan with the current time.
func New(plan schedule.Plan, sources []string) Snapshot {
	return Snapshot{
		Version: currentVersion,
		SavedAt: time.Now().UTC(),
		Sources: append([]string(nil), sources...),
		Plan:    plan.Clone(),
	}
}

// Store persists snapshots.
type Store interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// FileStore keeps one snapshot as indented JSON.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the saved snapshot if present.
func (s *FileStore) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, ErrSnapshotNotFound
		}
		return Snapshot{}, fmt.Errorf("snapshot: read %s: %w", s.path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: decode %s: %w", s.path, err)
	}
	if snap.Version > currentVersion {
		return Snapshot{}, fmt.Errorf("snapshot: %s has version %d, newest supported is %d", s.path, snap.Version, currentVersion)
	}
	return snap, nil
}

// Save writes the snapshot through a temporary file and a rename.
func (s *FileStore) Save(snap Snapshot) error {
	if snap.Version == 0 {
		snap.Version = currentVersion
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("snapshot: ensure dir: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("snapshot: write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("snapshot: replace %s: %w", s.path, err)
	}
	return nil
}
