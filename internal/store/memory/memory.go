// Package memory is the in-memory candidate store used by tests and the
// demo.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/januswing/strategy-miner/internal/store"
	"github.com/januswing/strategy-miner/internal/types"
)

// Store keeps candidates in a mutex-guarded map.
type Store struct {
	mu         sync.RWMutex
	candidates map[int64]types.StrategyCandidate
}

var _ store.Store = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		candidates: make(map[int64]types.StrategyCandidate),
	}
}

func (s *Store) Get(_ context.Context, id int64) (types.StrategyCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidate, ok := s.candidates[id]
	if !ok {
		return types.StrategyCandidate{}, store.ErrNotFound
	}

	return cloneCandidate(candidate), nil
}

func (s *Store) List(_ context.Context) ([]types.StrategyCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.StrategyCandidate, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		out = append(out, cloneCandidate(candidate))
	}

	sortByID(out)

	return out, nil
}

func (s *Store) ListByStatus(_ context.Context, status types.CandidateStatus) ([]types.StrategyCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.StrategyCandidate, 0)

	for _, candidate := range s.candidates {
		if candidate.Status == status {
			out = append(out, cloneCandidate(candidate))
		}
	}

	sortByID(out)

	return out, nil
}

func (s *Store) Insert(_ context.Context, candidate types.StrategyCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.candidates[candidate.ID]; exists {
		return store.ErrDuplicateID
	}

	s.candidates[candidate.ID] = cloneCandidate(candidate)

	return nil
}

func (s *Store) Update(_ context.Context, id int64, mutate func(*types.StrategyCandidate) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, ok := s.candidates[id]
	if !ok {
		return store.ErrNotFound
	}

	working := cloneCandidate(candidate)

	if err := mutate(&working); err != nil {
		return err
	}

	// The ID is the map key; mutations cannot move a record.
	working.ID = id
	s.candidates[id] = working

	return nil
}

func (s *Store) Close() error {
	return nil
}

func cloneCandidate(c types.StrategyCandidate) types.StrategyCandidate {
	out := c

	if c.Keywords != nil {
		out.Keywords = make([]string, len(c.Keywords))
		copy(out.Keywords, c.Keywords)
	}

	return out
}

func sortByID(candidates []types.StrategyCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID < candidates[j].ID
	})
}
