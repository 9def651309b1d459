// Package storage provides the persistent slot the scan database image is
// serialized into after every mutation.
package storage

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// Slot is one keyed byte slot in durable storage. It is the sole durability
// mechanism for scan history: the full database image is written to it after
// every mutation and read back on startup.
type Slot interface {
	// Load returns the stored image, or nil bytes when the slot has never
	// been written.
	Load() ([]byte, error)
	// Store replaces the stored image.
	Store(data []byte) error
}

// FileSlot keeps the snapshot in a single file under the data directory.
type FileSlot struct {
	path string
}

// NewFileSlot creates a FileSlot backed by the given file path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// Load reads the snapshot file. A missing file means an empty slot.
func (s *FileSlot) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Store writes the snapshot through a temp file and rename, so an
// interrupted write can never replace a good image with a torn one.
func (s *FileSlot) Store(data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// MemorySlot is an in-memory Slot. Tests use it to simulate an application
// restart by handing the same slot to a fresh store.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
}

// Load returns a copy of the stored image, or nil when empty.
func (s *MemorySlot) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Store replaces the stored image with a copy of data.
func (s *MemorySlot) Store(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}
