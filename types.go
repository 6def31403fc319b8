package voterquery

import (
	"context"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/registry"
)

// Sentinel errors surfaced by the SDK. Match with errors.Is.
var (
	// ErrNotReady is returned before the first successful Reload.
	ErrNotReady = domain.ErrSnapshotNotReady
	// ErrNotFound is returned by Voter for unknown identifiers.
	ErrNotFound = domain.ErrRecordNotFound
	// ErrRetrievalUnavailable signals an embedding or index outage.
	ErrRetrievalUnavailable = domain.ErrRetrievalUnavailable
	// ErrGenerationUnavailable signals a generation provider outage.
	ErrGenerationUnavailable = domain.ErrGenerationUnavailable
	// ErrMalformedDump signals a dump whose skipped-row ratio crossed the bound.
	ErrMalformedDump = domain.ErrMalformedRecord
)

// Embedder vectorizes text. Implementations back semantic retrieval; the
// built-in OpenAI provider is selected with WithOpenAI.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder is an optional extension of Embedder for providers with
// native batch support. Without it, Reload embeds records one at a time.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
}

// Prompt is the assembled, language-tagged context handed to a Generator.
type Prompt struct {
	Language  string
	Intent    string
	Text      string
	Records   int
	Truncated bool
}

// Generator phrases an answer from the assembled context.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt, question string) (string, error)
}

// Voter is one registrant record.
type Voter struct {
	ID             string
	Serial         string
	Name           string
	VoterID        string
	FatherName     string
	MotherName     string
	Gender         string
	DateOfBirth    string
	Occupation     string
	Address        string
	Ward           int
	Union          string
	AreaNo         string
	PhoneticName   string
	PhoneticFather string
}

// Match is one retrieved record with its relevance score in [0,1].
type Match struct {
	Voter  Voter
	Score  float64
	Reason string
}

// Aggregate carries the outcome of a counting query.
type Aggregate struct {
	Count       int
	Description string
}

// SearchResult is the retrieval outcome without the generation step.
type SearchResult struct {
	Intent    string
	Language  string
	Reason    string
	Truncated bool
	FollowUp  bool
	Context   string
	Matches   []Match
	Aggregate *Aggregate
}

// Answer is the full outcome of one question.
type Answer struct {
	Text      string
	Intent    string
	Language  string
	Reason    string
	Truncated bool
	FollowUp  bool
	Sources   []Match
	Aggregate *Aggregate
}

// Stats are the precomputed dataset breakdowns of the active snapshot.
type Stats struct {
	Total        int
	ByWard       map[int]int
	ByOccupation map[string]int
	ByGender     map[string]int
	Unions       []string
}

func voterFromDomain(v *domain.VoterRecord) Voter {
	return Voter{
		ID:             v.ID,
		Serial:         v.Serial,
		Name:           v.Name,
		VoterID:        v.VoterID,
		FatherName:     v.FatherName,
		MotherName:     v.MotherName,
		Gender:         string(v.Gender),
		DateOfBirth:    v.DateOfBirth,
		Occupation:     v.Occupation,
		Address:        v.Address,
		Ward:           v.Ward,
		Union:          v.Union,
		AreaNo:         v.AreaNo,
		PhoneticName:   v.PhoneticName,
		PhoneticFather: v.PhoneticFather,
	}
}

func matchesFromDomain(matches []domain.Match) []Match {
	if len(matches) == 0 {
		return nil
	}
	out := make([]Match, len(matches))
	for i, m := range matches {
		out[i] = Match{
			Voter:  voterFromDomain(m.Record),
			Score:  m.Score,
			Reason: string(m.Reason),
		}
	}
	return out
}

func aggregateFromDomain(a *domain.Aggregate) *Aggregate {
	if a == nil {
		return nil
	}
	return &Aggregate{Count: a.Count, Description: a.Description}
}

func statsFromDomain(st registry.Statistics) Stats {
	byGender := make(map[string]int, len(st.ByGender))
	for g, n := range st.ByGender {
		byGender[string(g)] = n
	}
	return Stats{
		Total:        st.Total,
		ByWard:       st.ByWard,
		ByOccupation: st.ByOccupation,
		ByGender:     byGender,
		Unions:       st.Unions,
	}
}
