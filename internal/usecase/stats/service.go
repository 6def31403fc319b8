// Package stats serves the precomputed dataset breakdowns and direct record
// lookups on the active snapshot.
package stats

import (
	"fmt"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/registry"
)

// SnapshotSource yields the active registry snapshot.
type SnapshotSource interface {
	Load() (*registry.Snapshot, error)
}

// Service reads snapshot statistics and records.
type Service struct {
	snapshots SnapshotSource
}

// New creates a stats service.
func New(snapshots SnapshotSource) *Service {
	return &Service{snapshots: snapshots}
}

// Stats returns the active snapshot's dataset statistics, or
// ErrSnapshotNotReady before the first load.
func (s *Service) Stats() (registry.Statistics, error) {
	snap, err := s.snapshots.Load()
	if err != nil {
		return registry.Statistics{}, err
	}
	return snap.Stats(), nil
}

// Voter looks up one record by identifier on the active snapshot.
func (s *Service) Voter(id string) (*domain.VoterRecord, error) {
	snap, err := s.snapshots.Load()
	if err != nil {
		return nil, err
	}
	rec, ok := snap.Get(id)
	if !ok {
		return nil, fmt.Errorf("voter %s: %w", id, domain.ErrRecordNotFound)
	}
	return rec, nil
}
