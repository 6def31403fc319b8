// Package registry holds the immutable voter snapshot and its atomic
// publication point. A snapshot is built once per ingestion pass; queries in
// flight keep the snapshot they started with.
package registry

import (
	"sort"

	"github.com/deshdata/voterquery/internal/domain"
)

// Statistics are dataset breakdowns precomputed at snapshot build time.
type Statistics struct {
	Total        int
	ByWard       map[int]int
	ByOccupation map[string]int
	ByGender     map[domain.Gender]int
	Unions       []string
}

// Snapshot is an immutable, fully-built view of the record collection.
// Readers never see partial state: the holder swaps whole snapshots.
type Snapshot struct {
	records []domain.VoterRecord
	byID    map[string]int
	stats   Statistics
}

// NewSnapshot builds a snapshot from normalized records. The input slice is
// copied and sorted by identifier; the caller must not retain writes to it.
func NewSnapshot(records []domain.VoterRecord) *Snapshot {
	sorted := make([]domain.VoterRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return domain.LessID(sorted[i].ID, sorted[j].ID)
	})

	s := &Snapshot{
		records: sorted,
		byID:    make(map[string]int, len(sorted)),
		stats: Statistics{
			Total:        len(sorted),
			ByWard:       make(map[int]int),
			ByOccupation: make(map[string]int),
			ByGender:     make(map[domain.Gender]int),
		},
	}

	unions := make(map[string]struct{})
	for i := range sorted {
		rec := &sorted[i]
		s.byID[rec.ID] = i
		if rec.Ward > 0 {
			s.stats.ByWard[rec.Ward]++
		}
		if rec.Occupation != "" {
			s.stats.ByOccupation[rec.Occupation]++
		}
		if rec.Gender != domain.GenderUnknown {
			s.stats.ByGender[rec.Gender]++
		}
		if rec.Union != "" {
			unions[rec.Union] = struct{}{}
		}
	}
	for u := range unions {
		s.stats.Unions = append(s.stats.Unions, u)
	}
	sort.Strings(s.stats.Unions)

	return s
}

// Records returns the full collection, sorted by identifier ascending.
// The slice is shared; callers must treat it as read-only.
func (s *Snapshot) Records() []domain.VoterRecord { return s.records }

// Len returns the record count.
func (s *Snapshot) Len() int { return len(s.records) }

// Get looks up a record by identifier.
func (s *Snapshot) Get(id string) (*domain.VoterRecord, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.records[i], true
}

// KnownWard reports whether any record carries the given ward. Filters on
// wards outside the dataset's range are NoMatch, not errors.
func (s *Snapshot) KnownWard(ward int) bool {
	_, ok := s.stats.ByWard[ward]
	return ok
}

// Stats returns the precomputed dataset statistics. Maps are shared and
// read-only by convention.
func (s *Snapshot) Stats() Statistics { return s.stats }
