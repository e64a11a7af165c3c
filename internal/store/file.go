// Package store provides durable backends for the attendance record list.
// Every backend keeps the same contract: one logical key, the whole list as
// a JSON blob, read-modify-write on append.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"classmark/internal/attendance"
)

// FileStore keeps the record list as a JSON file on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store writing to path. The file is created on
// first save; a missing file loads as an empty list.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the full record list.
func (f *FileStore) Load(_ context.Context) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []attendance.Record{}, nil
		}
		return nil, err
	}
	var records []attendance.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Save replaces the stored list.
func (f *FileStore) Save(_ context.Context, records []attendance.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o644)
}
