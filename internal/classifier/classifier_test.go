package classifier

import (
	"testing"

	"github.com/deshdata/voterquery/internal/domain"
)

func TestClassify_LookupByName_English(t *testing.T) {
	c := New()
	got := c.Classify("Who is Saiful Islam?")
	if got.Kind != domain.IntentLookupByName {
		t.Fatalf("kind = %s, want %s", got.Kind, domain.IntentLookupByName)
	}
	if got.Name != "saiful islam" {
		t.Errorf("name = %q, want %q", got.Name, "saiful islam")
	}
	if got.Language != domain.LangEnglish {
		t.Errorf("language = %s, want en", got.Language)
	}
}

func TestClassify_LookupByName_Bengali(t *testing.T) {
	c := New()
	got := c.Classify("সাইফুল ইসলাম কে?")
	if got.Kind != domain.IntentLookupByName {
		t.Fatalf("kind = %s, want %s", got.Kind, domain.IntentLookupByName)
	}
	if got.Name != "সাইফুল ইসলাম" {
		t.Errorf("name = %q, want %q", got.Name, "সাইফুল ইসলাম")
	}
	if got.Language != domain.LangBengali {
		t.Errorf("language = %s, want bn", got.Language)
	}
}

func TestClassify_AggregateCount_BengaliWard(t *testing.T) {
	c := New()
	got := c.Classify("১ নং ওয়ার্ডে কতজন ভোটার আছে?")
	if got.Kind != domain.IntentAggregateCount {
		t.Fatalf("kind = %s, want %s", got.Kind, domain.IntentAggregateCount)
	}
	if got.Filters.Ward != 1 {
		t.Errorf("ward = %d, want 1", got.Filters.Ward)
	}
	if got.Language != domain.LangBengali {
		t.Errorf("language = %s, want bn", got.Language)
	}
}

func TestClassify_AggregateCount_UnicodeForms(t *testing.T) {
	// The same ward question with U+09DF precomposed and as U+09AF plus
	// nukta. Keyboards and OCR produce both; classification must not care.
	c := New()
	questions := []string{
		"\u09eb \u09a8\u0982 \u0993\u09df\u09be\u09b0\u09cd\u09a1\u09c7 \u0995\u09a4\u099c\u09a8 \u09ad\u09cb\u099f\u09be\u09b0?",
		"\u09eb \u09a8\u0982 \u0993\u09af\u09bc\u09be\u09b0\u09cd\u09a1\u09c7 \u0995\u09a4\u099c\u09a8 \u09ad\u09cb\u099f\u09be\u09b0?",
	}
	for _, q := range questions {
		got := c.Classify(q)
		if got.Kind != domain.IntentAggregateCount {
			t.Errorf("Classify(%q) kind = %s, want %s", q, got.Kind, domain.IntentAggregateCount)
		}
		if got.Filters.Ward != 5 {
			t.Errorf("Classify(%q) ward = %d, want 5", q, got.Filters.Ward)
		}
	}
}

func TestClassify_AggregateCount_EnglishWard(t *testing.T) {
	c := New()
	got := c.Classify("How many voters in ward 3?")
	if got.Kind != domain.IntentAggregateCount {
		t.Fatalf("kind = %s, want %s", got.Kind, domain.IntentAggregateCount)
	}
	if got.Filters.Ward != 3 {
		t.Errorf("ward = %d, want 3", got.Filters.Ward)
	}
}

func TestClassify_AggregateCount_Occupation(t *testing.T) {
	c := New()
	got := c.Classify("কৃষকদের সংখ্যা কত?")
	if got.Kind != domain.IntentAggregateCount {
		t.Fatalf("kind = %s, want %s", got.Kind, domain.IntentAggregateCount)
	}
	if len(got.Filters.Occupation) == 0 || got.Filters.Occupation[0] != "কৃষক" {
		t.Errorf("occupation = %v, want canonical কৃষক first", got.Filters.Occupation)
	}
}

func TestClassify_AggregateList(t *testing.T) {
	c := New()
	tests := []struct {
		question string
		ward     int
		occ      string
	}{
		{"কৃষকদের তালিকা দাও", 0, "কৃষক"},
		{"List all farmers", 0, "কৃষক"},
		{"list of voters in ward 2", 2, ""},
	}
	for _, tt := range tests {
		got := c.Classify(tt.question)
		if got.Kind != domain.IntentAggregateList {
			t.Errorf("%q: kind = %s, want %s", tt.question, got.Kind, domain.IntentAggregateList)
			continue
		}
		if got.Filters.Ward != tt.ward {
			t.Errorf("%q: ward = %d, want %d", tt.question, got.Filters.Ward, tt.ward)
		}
		if tt.occ != "" && (len(got.Filters.Occupation) == 0 || got.Filters.Occupation[0] != tt.occ) {
			t.Errorf("%q: occupation = %v, want %s", tt.question, got.Filters.Occupation, tt.occ)
		}
	}
}

func TestClassify_LookupByRelation(t *testing.T) {
	c := New()
	tests := []struct {
		question string
		key      domain.RelationKey
		name     string
	}{
		{"মোঃ সিরাজুল মোল্যা এর ছেলে কে?", domain.RelationFatherKey, "মোঃ সিরাজুল মোল্যা"},
		{"Who is the son of Md. Sirajul Molla?", domain.RelationFatherKey, "md sirajul molla"},
		{"Who is the father of Saiful Islam?", domain.RelationNameKey, "saiful islam"},
		{"সাইফুল ইসলাম এর বাবা কে?", domain.RelationNameKey, "সাইফুল ইসলাম"},
	}
	for _, tt := range tests {
		got := c.Classify(tt.question)
		if got.Kind != domain.IntentLookupByRelation {
			t.Errorf("%q: kind = %s, want %s", tt.question, got.Kind, domain.IntentLookupByRelation)
			continue
		}
		if got.Relation != tt.key {
			t.Errorf("%q: relation = %s, want %s", tt.question, got.Relation, tt.key)
		}
		if got.Name != tt.name {
			t.Errorf("%q: name = %q, want %q", tt.question, got.Name, tt.name)
		}
	}
}

func TestClassify_SemanticFallback(t *testing.T) {
	c := New()
	q := "ভোট কেন্দ্র কোথায় অবস্থিত"
	got := c.Classify(q)
	if got.Kind != domain.IntentSemanticSearch {
		t.Fatalf("kind = %s, want %s", got.Kind, domain.IntentSemanticSearch)
	}
	if got.Remainder != q {
		t.Errorf("remainder = %q, want full question", got.Remainder)
	}
}

func TestClassify_Total(t *testing.T) {
	// Classification never fails and always yields exactly one intent.
	questions := []string{
		"?", "a", "১", "Who", "কত", "list", "এর ছেলে",
		"how many", "asdf qwerty", "।।।", "   x   ",
	}
	c := New()
	for _, q := range questions {
		got := c.Classify(q)
		switch got.Kind {
		case domain.IntentAggregateCount, domain.IntentAggregateList,
			domain.IntentLookupByRelation, domain.IntentLookupByName,
			domain.IntentSemanticSearch:
		default:
			t.Errorf("%q: unexpected kind %q", q, got.Kind)
		}
		if got.Language != domain.LangBengali && got.Language != domain.LangEnglish {
			t.Errorf("%q: unexpected language %q", q, got.Language)
		}
	}
}

func TestClassify_CueWithoutFilterFallsThrough(t *testing.T) {
	c := New()
	got := c.Classify("how many stars are in the sky")
	if got.Kind != domain.IntentSemanticSearch {
		t.Errorf("count cue without a structured filter should fall back to semantic, got %s", got.Kind)
	}
}

func TestClassify_FollowUp(t *testing.T) {
	c := New()
	if got := c.Classify("তার পেশা কী?"); !got.FollowUp {
		t.Error("expected bn pronoun question to be flagged as follow-up")
	}
	if got := c.Classify("Who is Saiful Islam?"); got.FollowUp {
		t.Error("fresh lookup should not be a follow-up")
	}
	// token match only: "this" must not trigger via "his"
	if got := c.Classify("what is this"); got.FollowUp {
		t.Error("substring of a token must not trigger follow-up")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Language
	}{
		{"Who is Saiful Islam?", domain.LangEnglish},
		{"সাইফুল ইসলাম কে?", domain.LangBengali},
		{"ward ৩ এর ভোটার তালিকা", domain.LangBengali}, // mixed, Bengali majority
		{"Saiful Islam ভোটার", domain.LangEnglish},     // mixed, Latin majority
		{"", domain.LangEnglish},
		{"123 ???", domain.LangEnglish},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.in); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
