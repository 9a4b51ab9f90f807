package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore writes one <slot>.json file per slot under a data directory.
type FileStore struct {
	mu      sync.Mutex
	dataDir string
}

// NewFileStore creates dataDir if needed.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dataDir: dataDir}, nil
}

func (s *FileStore) filePath(slot string) string {
	return filepath.Join(s.dataDir, slot+".json")
}

func (s *FileStore) Load(ctx context.Context, slot string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := ValidateSlot(slot); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.filePath(slot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read slot %s: %w", slot, err)
	}
	return string(data), nil
}

// Save writes to a temp file and renames it over the slot file, so a crash
// mid-write never leaves a truncated snapshot behind.
func (s *FileStore) Save(ctx context.Context, slot, data string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dataDir, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close slot %s: %w", slot, err)
	}
	if err := os.Rename(tmpName, s.filePath(slot)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename slot %s: %w", slot, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.filePath(slot)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
