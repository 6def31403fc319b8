// Package retriever turns a classified intent into a ranked candidate set:
// phonetic matching for lookups, snapshot filtering for aggregates, vector
// KNN for the semantic fallback. Absence of data is a NoMatch result, never
// an error; only infrastructure failures propagate.
package retriever

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/index"
	"github.com/deshdata/voterquery/internal/matcher"
	"github.com/deshdata/voterquery/internal/phonetic"
	"github.com/deshdata/voterquery/internal/registry"
)

// Defaults for result bounds.
const (
	DefaultTopK        = 5
	DefaultMaxListSize = 50
)

// Retriever routes intents to their retrieval strategy over one snapshot.
type Retriever struct {
	matcher  *matcher.Matcher
	embedder domain.Embedder
	vectors  index.VectorIndex

	topK    int
	maxList int
}

// New creates a retriever. Non-positive bounds select the defaults.
func New(m *matcher.Matcher, embedder domain.Embedder, vectors index.VectorIndex, topK, maxList int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if maxList <= 0 {
		maxList = DefaultMaxListSize
	}
	return &Retriever{
		matcher:  m,
		embedder: embedder,
		vectors:  vectors,
		topK:     topK,
		maxList:  maxList,
	}
}

// Retrieve produces the candidate set for one classified question against
// the given snapshot.
func (r *Retriever) Retrieve(ctx context.Context, intent domain.QueryIntent, snap *registry.Snapshot) (domain.RetrievalResult, error) {
	switch intent.Kind {
	case domain.IntentLookupByName:
		return r.lookup(intent.Name, domain.RelationNameKey, snap), nil
	case domain.IntentLookupByRelation:
		return r.lookup(intent.Name, intent.Relation, snap), nil
	case domain.IntentAggregateCount:
		return r.count(intent, snap), nil
	case domain.IntentAggregateList:
		return r.list(intent, snap), nil
	case domain.IntentSemanticSearch:
		return r.semantic(ctx, intent, snap)
	default:
		return domain.RetrievalResult{}, fmt.Errorf("unknown intent kind %q", intent.Kind)
	}
}

func (r *Retriever) lookup(fragment string, key domain.RelationKey, snap *registry.Snapshot) domain.RetrievalResult {
	matches := r.matcher.Match(fragment, snap.Records(), key)
	if len(matches) > r.topK {
		matches = matches[:r.topK]
	}
	return domain.RetrievalResult{Matches: matches}
}

func (r *Retriever) count(intent domain.QueryIntent, snap *registry.Snapshot) domain.RetrievalResult {
	if unknownWard(intent.Filters, snap) {
		return domain.RetrievalResult{}
	}
	n := 0
	for _, rec := range snap.Records() {
		if filtersMatch(intent.Filters, &rec) {
			n++
		}
	}
	return domain.RetrievalResult{
		Aggregate: &domain.Aggregate{
			Count:       n,
			Description: describeFilters(intent.Filters),
		},
	}
}

func (r *Retriever) list(intent domain.QueryIntent, snap *registry.Snapshot) domain.RetrievalResult {
	if unknownWard(intent.Filters, snap) {
		return domain.RetrievalResult{}
	}

	var out domain.RetrievalResult
	records := snap.Records()
	for i := range records {
		if !filtersMatch(intent.Filters, &records[i]) {
			continue
		}
		if len(out.Matches) == r.maxList {
			out.Truncated = true
			break
		}
		out.Matches = append(out.Matches, domain.Match{
			Record: &records[i],
			Score:  1.0,
			Reason: domain.ReasonFilter,
		})
	}
	return out
}

func (r *Retriever) semantic(ctx context.Context, intent domain.QueryIntent, snap *registry.Snapshot) (domain.RetrievalResult, error) {
	emb, err := r.embedder.Embed(ctx, intent.Remainder)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.vectors.Search(ctx, emb.Embedding, r.topK)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("vector search: %w", err)
	}

	var out domain.RetrievalResult
	for _, hit := range hits {
		rec, ok := snap.Get(hit.ID)
		if !ok {
			// Index generation briefly ahead of or behind the snapshot.
			continue
		}
		out.Matches = append(out.Matches, domain.Match{
			Record: rec,
			Score:  hit.Score,
			Reason: domain.ReasonSemantic,
		})
	}
	return out, nil
}

// unknownWard reports a ward filter outside the dataset's known range.
func unknownWard(f domain.Filters, snap *registry.Snapshot) bool {
	return f.Ward > 0 && !snap.KnownWard(f.Ward)
}

func filtersMatch(f domain.Filters, rec *domain.VoterRecord) bool {
	if f.Ward > 0 && rec.Ward != f.Ward {
		return false
	}
	if len(f.Occupation) > 0 && !occupationMatches(f.Occupation, rec.Occupation) {
		return false
	}
	if f.Union != "" && !unionMatches(f.Union, rec.Union) {
		return false
	}
	return true
}

// unionMatches compares union names across scripts: direct case-insensitive
// equality first, phonetic keys as the fallback so "babra" matches "বাবরা".
func unionMatches(want, got string) bool {
	want, got = strings.TrimSpace(want), strings.TrimSpace(got)
	if strings.EqualFold(want, got) {
		return true
	}
	wk := phonetic.Key(want)
	return wk != "" && wk == phonetic.Key(got)
}

// occupationMatches is a case-insensitive substring match against every
// lexicon form of the requested occupation. Record occupations are free
// text, so "কৃষি কাজ" still matches the cue "কৃষ...".
func occupationMatches(forms []string, occupation string) bool {
	occ := strings.ToLower(strings.TrimSpace(occupation))
	if occ == "" {
		return false
	}
	for _, form := range forms {
		form = strings.ToLower(strings.TrimSpace(form))
		if form == "" {
			continue
		}
		if strings.Contains(occ, form) || strings.Contains(form, occ) {
			return true
		}
	}
	return false
}

// describeFilters renders the applied filter for the generation step to
// phrase the answer, e.g. "ward 1, occupation কৃষক".
func describeFilters(f domain.Filters) string {
	var parts []string
	if f.Ward > 0 {
		parts = append(parts, "ward "+strconv.Itoa(f.Ward))
	}
	if len(f.Occupation) > 0 {
		parts = append(parts, "occupation "+f.Occupation[0])
	}
	if f.Union != "" {
		parts = append(parts, "union "+f.Union)
	}
	if len(parts) == 0 {
		return "all voters"
	}
	return strings.Join(parts, ", ")
}
