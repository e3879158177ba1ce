// Package store persists strategy candidates across validation runs.
package store

import (
	"context"
	"errors"

	"github.com/januswing/strategy-miner/internal/types"
)

var (
	// ErrNotFound is returned when no candidate has the requested ID.
	ErrNotFound = errors.New("candidate not found")
	// ErrDuplicateID is returned when inserting a candidate whose ID is
	// already taken.
	ErrDuplicateID = errors.New("candidate id already exists")
)

// Store is the candidate repository. Update applies a mutation to a single
// record atomically; implementations must not rewrite unrelated records.
// Candidates are never deleted.
type Store interface {
	Get(ctx context.Context, id int64) (types.StrategyCandidate, error)
	List(ctx context.Context) ([]types.StrategyCandidate, error)
	ListByStatus(ctx context.Context, status types.CandidateStatus) ([]types.StrategyCandidate, error)
	Insert(ctx context.Context, candidate types.StrategyCandidate) error
	// Update loads the candidate, applies mutate to it and writes it back
	// as one atomic operation. An error from mutate aborts the write.
	Update(ctx context.Context, id int64, mutate func(*types.StrategyCandidate) error) error
	Close() error
}
