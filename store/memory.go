package store

import (
	"context"
	"sync"

	"github.com/bellapacxx/inzo-lotto/models"
)

// MemoryStore keeps the state in process. Used by tests and dry runs.
type MemoryStore struct {
	mu    sync.Mutex
	state *models.RoundState
	saves int
	err   error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (models.RoundState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.RoundState{}, s.err
	}
	if s.state == nil {
		return models.NewRoundState(), nil
	}
	return s.state.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, state models.RoundState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	cp := state.Clone()
	s.state = &cp
	s.saves++
	return nil
}

// Saves counts successful saves.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// FailWith makes every later Load and Save return err; nil clears it.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
