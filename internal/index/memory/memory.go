// Package memory is the embedded VectorIndex driver: a brute-force cosine
// scan over normalized vectors. It serves single-node deployments and tests;
// the redis driver covers everything larger.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/index"
)

type entry struct {
	id     string
	vector []float32 // unit-normalized at build time
}

// Index implements index.VectorIndex over an atomically swapped entry slice.
type Index struct {
	current atomic.Pointer[[]entry]
}

func New() *Index {
	idx := &Index{}
	empty := make([]entry, 0)
	idx.current.Store(&empty)
	return idx
}

// Rebuild normalizes and stores a full replacement set. Zero vectors are
// rejected: they make cosine similarity undefined.
func (m *Index) Rebuild(_ context.Context, entries []index.Entry) error {
	built := make([]entry, 0, len(entries))
	for _, e := range entries {
		norm, ok := normalize(e.Vector)
		if !ok {
			return fmt.Errorf("entry %s: zero or empty vector", e.ID)
		}
		built = append(built, entry{id: e.ID, vector: norm})
	}
	m.current.Store(&built)
	return nil
}

// Search scans all entries and returns the top k by cosine similarity,
// ties broken by ascending record identifier.
func (m *Index) Search(_ context.Context, vector []float32, k int) ([]index.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	query, ok := normalize(vector)
	if !ok {
		return nil, fmt.Errorf("zero or empty query vector")
	}

	entries := *m.current.Load()
	hits := make([]index.Hit, 0, len(entries))
	for i := range entries {
		if len(entries[i].vector) != len(query) {
			continue
		}
		sim := dot(entries[i].vector, query)
		hits = append(hits, index.Hit{ID: entries[i].id, Score: clamp01(sim)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return domain.LessID(hits[i].ID, hits[j].ID)
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *Index) Close() {}

func normalize(v []float32) ([]float32, bool) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 || len(v) == 0 {
		return nil, false
	}
	inv := 1 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out, true
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
