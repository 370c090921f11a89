package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bellapacxx/inzo-lotto/models"
)

// FileStore keeps the state as an indented JSON file. Saves go through a
// temporary file and a rename, so a crash never leaves a half written document.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (models.RoundState, error) {
	if err := ctx.Err(); err != nil {
		return models.RoundState{}, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()
	if errors.Is(err, os.ErrNotExist) {
		return models.NewRoundState(), nil
	}
	if err != nil {
		return models.RoundState{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	var state models.RoundState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.RoundState{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	state.Normalize()
	return state, nil
}

func (s *FileStore) Save(ctx context.Context, state models.RoundState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	state.Normalize()
	data, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
