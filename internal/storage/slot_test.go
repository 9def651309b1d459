package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.bin")
	slot := NewFileSlot(path)

	// Empty slot loads as nil bytes, not an error.
	data, err := slot.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if data != nil {
		t.Fatalf("Load() on empty slot = %v, want nil", data)
	}

	want := []byte("database image v1")
	if err := slot.Store(want); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := slot.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Load() = %q, want %q", got, want)
	}

	// Overwrite replaces the image fully.
	want = []byte("v2")
	if err := slot.Store(want); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	got, err = slot.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Load() after overwrite = %q, want %q", got, want)
	}

	// No temp file may linger after a completed write.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file still present after Store")
	}
}

func TestMemorySlot(t *testing.T) {
	slot := &MemorySlot{}

	data, err := slot.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if data != nil {
		t.Fatalf("Load() on empty slot = %v, want nil", data)
	}

	image := []byte("database image")
	if err := slot.Store(image); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	// Mutating the caller's slice after Store must not affect the slot.
	image[0] = 'X'

	got, err := slot.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(got, []byte("database image")) {
		t.Errorf("Load() = %q, stored image was mutated", got)
	}

	// Mutating the loaded slice must not affect a later load.
	got[0] = 'Y'
	again, err := slot.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(again, []byte("database image")) {
		t.Errorf("Load() = %q, slot leaked its internal buffer", again)
	}
}
