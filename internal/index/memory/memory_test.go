package memory

import (
	"context"
	"math"
	"testing"

	"github.com/deshdata/voterquery/internal/index"
)

func TestSearch_RanksByCosine(t *testing.T) {
	idx := New()
	err := idx.Rebuild(context.Background(), []index.Entry{
		{ID: "1", Vector: []float32{1, 0}},
		{ID: "2", Vector: []float32{0, 1}},
		{ID: "3", Vector: []float32{1, 1}},
	})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	if hits[0].ID != "1" || math.Abs(hits[0].Score-1.0) > 1e-6 {
		t.Errorf("top hit = %+v, want ID 1 score 1.0", hits[0])
	}
	if hits[1].ID != "3" {
		t.Errorf("second hit = %s, want 3", hits[1].ID)
	}
}

func TestSearch_TiesBrokenByID(t *testing.T) {
	idx := New()
	err := idx.Rebuild(context.Background(), []index.Entry{
		{ID: "12", Vector: []float32{1, 0}},
		{ID: "3", Vector: []float32{1, 0}},
	})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if hits[0].ID != "3" || hits[1].ID != "12" {
		t.Errorf("tie order = %s, %s; want 3, 12 (numeric)", hits[0].ID, hits[1].ID)
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx := New()
	hits, err := idx.Search(context.Background(), []float32{1}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0", len(hits))
	}
}

func TestRebuild_RejectsZeroVector(t *testing.T) {
	idx := New()
	err := idx.Rebuild(context.Background(), []index.Entry{{ID: "1", Vector: []float32{0, 0}}})
	if err == nil {
		t.Fatal("expected error for zero vector")
	}
}

func TestRebuild_ReplacesWholeSet(t *testing.T) {
	idx := New()
	ctx := context.Background()
	if err := idx.Rebuild(ctx, []index.Entry{{ID: "old", Vector: []float32{1, 0}}}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Rebuild(ctx, []index.Entry{{ID: "new", Vector: []float32{1, 0}}}); err != nil {
		t.Fatal(err)
	}

	hits, err := idx.Search(ctx, []float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "new" {
		t.Errorf("hits = %+v, want only the replacement entry", hits)
	}
}

func TestSearch_DimensionMismatchSkipped(t *testing.T) {
	idx := New()
	err := idx.Rebuild(context.Background(), []index.Entry{
		{ID: "1", Vector: []float32{1, 0, 0}},
		{ID: "2", Vector: []float32{1, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "2" {
		t.Errorf("hits = %+v, want only the matching-dimension entry", hits)
	}
}
