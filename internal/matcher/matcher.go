// Package matcher scores free-text name fragments against the phonetic keys
// of the record collection.
package matcher

import (
	"sort"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/phonetic"
)

// DefaultThreshold is the minimum similarity for a phonetic match. Chosen so
// that one-class drift within a short key ("ml" vs "mlj") still matches while
// unrelated names stay out; validated against the name-variant fixtures in
// the package tests.
const DefaultThreshold = 0.6

// Matcher finds records whose phonetic keys are close to a query fragment.
type Matcher struct {
	threshold float64
}

// New creates a matcher. A non-positive threshold selects DefaultThreshold.
func New(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the configured minimum similarity.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Match scores fragment against the selected phonetic key of every record
// and returns matches at or above the threshold, descending by score, ties
// broken by identifier ascending. An unmatched fragment yields an empty
// slice, never an error.
func (m *Matcher) Match(fragment string, records []domain.VoterRecord, key domain.RelationKey) []domain.Match {
	fragKey := phonetic.Key(fragment)
	if fragKey == "" {
		return nil
	}

	var matches []domain.Match
	for i := range records {
		rec := &records[i]
		recKey := rec.PhoneticName
		if key == domain.RelationFatherKey {
			recKey = rec.PhoneticFather
		}
		if recKey == "" {
			continue
		}
		score := phonetic.Similarity(fragKey, recKey)
		if score >= m.threshold {
			matches = append(matches, domain.Match{
				Record: rec,
				Score:  score,
				Reason: domain.ReasonPhonetic,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return domain.LessID(matches[i].Record.ID, matches[j].Record.ID)
	})
	return matches
}
