package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mirrorday/mirrorday/internal/apperr"
	"github.com/mirrorday/mirrorday/internal/models"
)

// FileStore persists the reminder collection as a JSON file. Writes go
// through a temp file and rename so a crash mid-write never corrupts the
// previously durable copy. The widget reads the same file.
type FileStore struct {
	path string
}

// NewFileStore creates a file store rooted at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path
func (f *FileStore) Path() string { return f.path }

// Load reads the persisted collection. A missing file yields an empty
// collection; an unparseable file yields an empty collection plus a
// DataCorruption error so the caller can log it.
func (f *FileStore) Load() ([]models.Reminder, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	var reminders []models.Reminder
	if err := json.Unmarshal(data, &reminders); err != nil {
		return nil, apperr.DataCorruption(err)
	}
	return reminders, nil
}

// Save atomically replaces the persisted collection
func (f *FileStore) Save(reminders []models.Reminder) error {
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	data, err := json.MarshalIndent(reminders, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode reminders: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".reminders-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}
