package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/deshdata/voterquery/internal/domain"
)

func testRecords() []domain.VoterRecord {
	return []domain.VoterRecord{
		{ID: "10", Name: "Rahima Khatun", Ward: 2, Occupation: "গৃহিণী", Gender: domain.GenderFemale, Union: "বাবরা"},
		{ID: "2", Name: "Saiful Islam", Ward: 1, Occupation: "কৃষক", Gender: domain.GenderMale, Union: "বাবরা"},
		{ID: "1", Name: "Abdul Karim", Ward: 1, Occupation: "কৃষক", Gender: domain.GenderMale, Union: "বাবরা"},
	}
}

func TestNewSnapshot_SortedByID(t *testing.T) {
	s := NewSnapshot(testRecords())
	records := s.Records()
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	want := []string{"1", "2", "10"}
	for i, id := range want {
		if records[i].ID != id {
			t.Errorf("records[%d].ID = %s, want %s (numeric order)", i, records[i].ID, id)
		}
	}
}

func TestSnapshot_Get(t *testing.T) {
	s := NewSnapshot(testRecords())
	rec, ok := s.Get("2")
	if !ok {
		t.Fatal("expected to find record 2")
	}
	if rec.Name != "Saiful Islam" {
		t.Errorf("name = %s, want Saiful Islam", rec.Name)
	}
	if _, ok := s.Get("999"); ok {
		t.Error("unexpected hit for missing ID")
	}
}

func TestSnapshot_Stats(t *testing.T) {
	s := NewSnapshot(testRecords())
	stats := s.Stats()
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.ByWard[1] != 2 || stats.ByWard[2] != 1 {
		t.Errorf("ward breakdown = %v, want map[1:2 2:1]", stats.ByWard)
	}
	if stats.ByOccupation["কৃষক"] != 2 {
		t.Errorf("occupation কৃষক = %d, want 2", stats.ByOccupation["কৃষক"])
	}
	if stats.ByGender[domain.GenderMale] != 2 {
		t.Errorf("male = %d, want 2", stats.ByGender[domain.GenderMale])
	}
	if len(stats.Unions) != 1 || stats.Unions[0] != "বাবরা" {
		t.Errorf("unions = %v, want [বাবরা]", stats.Unions)
	}
}

func TestSnapshot_KnownWard(t *testing.T) {
	s := NewSnapshot(testRecords())
	if !s.KnownWard(1) {
		t.Error("ward 1 should be known")
	}
	if s.KnownWard(99) {
		t.Error("ward 99 should be unknown")
	}
}

func TestHolder_NotReady(t *testing.T) {
	h := NewHolder()
	if _, err := h.Load(); !errors.Is(err, domain.ErrSnapshotNotReady) {
		t.Fatalf("err = %v, want ErrSnapshotNotReady", err)
	}
}

func TestHolder_SwapVisibility(t *testing.T) {
	h := NewHolder()
	first := NewSnapshot(testRecords()[:1])
	h.Swap(first)

	s, err := h.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}

	// Concurrent readers see either the old or the new snapshot, whole.
	second := NewSnapshot(testRecords())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				snap, err := h.Load()
				if err != nil {
					t.Errorf("load: %v", err)
					return
				}
				if n := snap.Len(); n != 1 && n != 3 {
					t.Errorf("torn snapshot: len = %d", n)
					return
				}
			}
		}()
	}
	h.Swap(second)
	wg.Wait()

	s, _ = h.Load()
	if s.Len() != 3 {
		t.Errorf("after swap len = %d, want 3", s.Len())
	}
}
