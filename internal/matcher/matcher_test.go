package matcher

import (
	"testing"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/phonetic"
)

func record(id, name, father string) domain.VoterRecord {
	return domain.VoterRecord{
		ID:             id,
		Name:           name,
		FatherName:     father,
		PhoneticName:   phonetic.Key(name),
		PhoneticFather: phonetic.Key(father),
	}
}

func testRecords() []domain.VoterRecord {
	return []domain.VoterRecord{
		record("1", "সাইফুল ইসলাম", "মোঃ সিরাজুল মোল্যা"),
		record("2", "Rahima Khatun", "Abdul Karim"),
		record("3", "আব্দুল করিম", "রহিম উদ্দিন"),
		record("4", "Jamal Uddin", "Saiful Islam"),
	}
}

func TestMatch_ExactNameScoresOne(t *testing.T) {
	m := New(0)
	got := m.Match("সাইফুল ইসলাম", testRecords(), domain.RelationNameKey)
	if len(got) == 0 {
		t.Fatal("expected at least one match")
	}
	if got[0].Record.ID != "1" {
		t.Fatalf("top match ID = %s, want 1", got[0].Record.ID)
	}
	if got[0].Score != 1.0 {
		t.Errorf("exact name score = %v, want 1.0", got[0].Score)
	}
}

func TestMatch_CrossScriptLookup(t *testing.T) {
	m := New(0)
	got := m.Match("Saiful Islam", testRecords(), domain.RelationNameKey)
	if len(got) == 0 {
		t.Fatal("expected a cross-script match")
	}
	if got[0].Record.ID != "1" {
		t.Errorf("top match ID = %s, want 1", got[0].Record.ID)
	}
	if got[0].Score < 0.95 {
		t.Errorf("cross-script score = %v, want >= 0.95", got[0].Score)
	}
}

func TestMatch_FatherKey(t *testing.T) {
	m := New(0)
	got := m.Match("মোঃ সিরাজুল মোল্যা", testRecords(), domain.RelationFatherKey)
	if len(got) == 0 {
		t.Fatal("expected a father-name match")
	}
	if got[0].Record.ID != "1" {
		t.Errorf("top match ID = %s, want 1", got[0].Record.ID)
	}
	for _, match := range got {
		if match.Reason != domain.ReasonPhonetic {
			t.Errorf("reason = %s, want %s", match.Reason, domain.ReasonPhonetic)
		}
	}
}

func TestMatch_NoNeighborIsEmptyNotError(t *testing.T) {
	m := New(0)
	got := m.Match("Zebunnesa Chowdhury", testRecords(), domain.RelationNameKey)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d matches", len(got))
	}
}

func TestMatch_EmptyFragment(t *testing.T) {
	m := New(0)
	if got := m.Match("", testRecords(), domain.RelationNameKey); got != nil {
		t.Errorf("empty fragment: got %v, want nil", got)
	}
	if got := m.Match("??? ১২৩", testRecords(), domain.RelationNameKey); got != nil {
		t.Errorf("punctuation-only fragment: got %v, want nil", got)
	}
}

func TestMatch_TieBrokenByIDAscending(t *testing.T) {
	records := []domain.VoterRecord{
		record("12", "Saiful Islam", ""),
		record("3", "সাইফুল ইসলাম", ""),
	}
	m := New(0)
	got := m.Match("Saiful Islam", records, domain.RelationNameKey)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Record.ID != "3" || got[1].Record.ID != "12" {
		t.Errorf("tie order = [%s %s], want [3 12] (numeric ID ascending)",
			got[0].Record.ID, got[1].Record.ID)
	}
}

func TestMatch_ThresholdFiltersWeakMatches(t *testing.T) {
	strict := New(0.99)
	got := strict.Match("Soyful Islam", []domain.VoterRecord{
		record("1", "Saiful Islam", ""),
	}, domain.RelationNameKey)
	// identical keys under the reduction, so even a strict threshold passes
	if len(got) != 1 {
		t.Fatalf("expected variant spelling to survive strict threshold, got %d", len(got))
	}

	got = strict.Match("Sirajul Molla", []domain.VoterRecord{
		record("1", "Sirajul Islam", ""),
	}, domain.RelationNameKey)
	if len(got) != 0 {
		t.Errorf("expected partial name to fail 0.99 threshold, got %d matches", len(got))
	}
}
