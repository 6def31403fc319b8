package domain

// IntentKind is the classified purpose of a question.
type IntentKind string

// Intent kinds, ordered by classifier precedence.
const (
	IntentAggregateCount   IntentKind = "aggregate_count"
	IntentAggregateList    IntentKind = "aggregate_list"
	IntentLookupByRelation IntentKind = "lookup_by_relation"
	IntentLookupByName     IntentKind = "lookup_by_name"
	IntentSemanticSearch   IntentKind = "semantic_search"
)

// Language of a question, detected by script.
type Language string

// Supported languages.
const (
	LangBengali Language = "bn"
	LangEnglish Language = "en"
)

// RelationKey selects which phonetic key a relational lookup searches.
type RelationKey string

// Relation directions. "son of X" searches the father-name key for X;
// "father of X" searches the name key for X and answers from the record.
const (
	RelationFatherKey RelationKey = "father_name"
	RelationNameKey   RelationKey = "name"
)

// Filters are the structured parameters extracted from an aggregate question.
type Filters struct {
	Ward       int      // 0 = no ward filter
	Occupation []string // all lexicon forms of the matched occupation, dataset script first
	Union      string
}

// Empty reports whether no filter was extracted.
func (f Filters) Empty() bool {
	return f.Ward == 0 && len(f.Occupation) == 0 && f.Union == ""
}

// QueryIntent is the transient classification of one question. Constructed
// per request, never persisted.
type QueryIntent struct {
	Kind     IntentKind
	Language Language

	// Lookup intents.
	Name     string
	Relation RelationKey

	// Aggregate intents.
	Filters Filters

	// Semantic fallback: the whole question.
	Remainder string

	// FollowUp marks pronoun-style references to a previous exchange.
	// Conversation history is the presentation layer's concern; the core
	// only surfaces the signal.
	FollowUp bool
}
