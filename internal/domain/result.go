package domain

// MatchReason explains why a record appears in a retrieval result.
type MatchReason string

// Match reasons.
const (
	ReasonPhonetic MatchReason = "phonetic"
	ReasonSemantic MatchReason = "semantic"
	ReasonFilter   MatchReason = "filter"
	ReasonNoMatch  MatchReason = "no_match"
)

// Match is one retrieved record with its relevance score in [0,1].
type Match struct {
	Record *VoterRecord
	Score  float64
	Reason MatchReason
}

// Aggregate carries the answer to a counting query: the number plus a
// human-readable description of the applied filter, for the generation
// step to phrase the answer.
type Aggregate struct {
	Count       int
	Description string
}

// RetrievalResult is the ordered outcome of one retrieval, consumed only by
// the context assembler for that request. An empty result is the normal
// NoMatch outcome, not an error.
type RetrievalResult struct {
	Matches   []Match
	Aggregate *Aggregate
	Truncated bool
}

// Empty reports whether retrieval produced nothing.
func (r *RetrievalResult) Empty() bool {
	return len(r.Matches) == 0 && r.Aggregate == nil
}

// Reason returns ReasonNoMatch for an empty result, otherwise the reason of
// the top match (ReasonFilter for aggregates).
func (r *RetrievalResult) Reason() MatchReason {
	if r.Empty() {
		return ReasonNoMatch
	}
	if r.Aggregate != nil {
		return ReasonFilter
	}
	return r.Matches[0].Reason
}
