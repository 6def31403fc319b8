// Package index defines the vector index contract shared by the in-memory
// and Redis drivers. An index holds one embedding per voter record and
// answers cosine-similarity KNN queries over them.
package index

import "context"

// Entry is one indexed record: the record identifier plus its embedding.
type Entry struct {
	ID     string
	Vector []float32
}

// Hit is one KNN result. Score is cosine similarity in [0,1].
type Hit struct {
	ID    string
	Score float64
}

// VectorIndex is implemented by the memory and redis drivers. Rebuild
// replaces the whole index; queries in flight keep seeing the previous
// generation until the swap completes.
type VectorIndex interface {
	Rebuild(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)
	Close()
}
