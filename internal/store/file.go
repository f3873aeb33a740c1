package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps one file per slot under a state directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(slot Slot) string {
	return filepath.Join(s.dir, fmt.Sprintf("slot-%04x.json", uint16(slot)))
}

// Load reads the record for the slot. A missing file means the slot is
// empty, not an error.
func (s *FileStore) Load(slot Slot) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load slot %04x: %w", uint16(slot), err)
	}
	return data, true, nil
}

// Save writes the record through a temp file and rename so a power cut
// mid-write cannot leave a torn record behind.
func (s *FileStore) Save(slot Slot, data []byte) error {
	tmp := s.path(slot) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save slot %04x: %w", uint16(slot), err)
	}
	if err := os.Rename(tmp, s.path(slot)); err != nil {
		return fmt.Errorf("save slot %04x: %w", uint16(slot), err)
	}
	return nil
}

// Erase removes the record. Erasing an empty slot succeeds.
func (s *FileStore) Erase(slot Slot) error {
	err := os.Remove(s.path(slot))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("erase slot %04x: %w", uint16(slot), err)
	}
	return nil
}
