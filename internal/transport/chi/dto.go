package chi

import (
	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/registry"
)

// ErrorCode identifies a machine-readable error category.
type ErrorCode string

// Error codes returned in ErrorResponse bodies.
const (
	CodeBadRequest            ErrorCode = "bad_request"
	CodeValidationFailed      ErrorCode = "validation_failed"
	CodeSnapshotNotReady      ErrorCode = "snapshot_not_ready"
	CodeRetrievalUnavailable  ErrorCode = "retrieval_unavailable"
	CodeGenerationUnavailable ErrorCode = "generation_unavailable"
	CodeVoterNotFound         ErrorCode = "voter_not_found"
	CodeDumpMalformed         ErrorCode = "dump_malformed"
	CodeInternalError         ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AskRequest is the body for POST /v1/ask and POST /v1/search.
type AskRequest struct {
	Question string `json:"question"`
}

// VoterResponse is a registry record rendered for the API.
type VoterResponse struct {
	ID             string `json:"id"`
	Serial         string `json:"serial,omitempty"`
	Name           string `json:"name"`
	VoterID        string `json:"voter_id"`
	FatherName     string `json:"father_name,omitempty"`
	MotherName     string `json:"mother_name,omitempty"`
	Gender         string `json:"gender,omitempty"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	Occupation     string `json:"occupation,omitempty"`
	Address        string `json:"address,omitempty"`
	Ward           int    `json:"ward,omitempty"`
	Union          string `json:"union,omitempty"`
	AreaNo         string `json:"area_no,omitempty"`
	PhoneticName   string `json:"phonetic_name,omitempty"`
	PhoneticFather string `json:"phonetic_father,omitempty"`
}

// MatchItem is one retrieved record with its relevance score.
type MatchItem struct {
	Voter  VoterResponse `json:"voter"`
	Score  float64       `json:"score"`
	Reason string        `json:"reason"`
}

// AggregateResult carries the outcome of a counting query.
type AggregateResult struct {
	Count       int    `json:"count"`
	Description string `json:"description"`
}

// AskResponse is the body for POST /v1/ask.
type AskResponse struct {
	Answer    string           `json:"answer"`
	Intent    string           `json:"intent"`
	Language  string           `json:"language"`
	Reason    string           `json:"reason"`
	Truncated bool             `json:"truncated"`
	FollowUp  bool             `json:"follow_up,omitempty"`
	Sources   []MatchItem      `json:"sources,omitempty"`
	Aggregate *AggregateResult `json:"aggregate,omitempty"`
}

// SearchResponse is the body for POST /v1/search: the retrieval outcome
// without the generation step.
type SearchResponse struct {
	Intent    string           `json:"intent"`
	Language  string           `json:"language"`
	Reason    string           `json:"reason"`
	Truncated bool             `json:"truncated"`
	FollowUp  bool             `json:"follow_up,omitempty"`
	Context   string           `json:"context"`
	Matches   []MatchItem      `json:"matches,omitempty"`
	Aggregate *AggregateResult `json:"aggregate,omitempty"`
}

// StatsResponse is the body for GET /v1/stats.
type StatsResponse struct {
	Total        int            `json:"total"`
	ByWard       map[int]int    `json:"by_ward"`
	ByOccupation map[string]int `json:"by_occupation"`
	ByGender     map[string]int `json:"by_gender"`
	Unions       []string       `json:"unions,omitempty"`
}

// ReloadResponse is the body for POST /v1/admin/reload.
type ReloadResponse struct {
	Records int `json:"records"`
}

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func voterToResponse(v *domain.VoterRecord) VoterResponse {
	return VoterResponse{
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

func matchesToResponse(matches []domain.Match) []MatchItem {
	if len(matches) == 0 {
		return nil
	}
	items := make([]MatchItem, len(matches))
	for i, m := range matches {
		items[i] = MatchItem{
			Voter:  voterToResponse(m.Record),
			Score:  m.Score,
			Reason: string(m.Reason),
		}
	}
	return items
}

func aggregateToResponse(a *domain.Aggregate) *AggregateResult {
	if a == nil {
		return nil
	}
	return &AggregateResult{Count: a.Count, Description: a.Description}
}

func statsToResponse(st registry.Statistics) StatsResponse {
	byGender := make(map[string]int, len(st.ByGender))
	for g, n := range st.ByGender {
		byGender[string(g)] = n
	}
	return StatsResponse{
		Total:        st.Total,
		ByWard:       st.ByWard,
		ByOccupation: st.ByOccupation,
		ByGender:     byGender,
		Unions:       st.Unions,
	}
}
