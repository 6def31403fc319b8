// Package classifier assigns an intent to a raw question. Classification is
// total: any non-empty input yields exactly one QueryIntent, falling back to
// semantic search when no rule applies.
package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/phonetic"
)

// Patterns pass through phonetic.Normalize so their Bengali alternatives sit
// in the same Unicode form as the normalized question.
var (
	wardAfterRe  = regexp.MustCompile(phonetic.Normalize(`(\d+)\s*(?:নং|no\.?|number)?\s*(?:ওয়ার্ড|ward)`))
	wardBeforeRe = regexp.MustCompile(phonetic.Normalize(`(?:ওয়ার্ড|ward)\s*(?:নং|no\.?|number)?\s*(\d+)`))
	unionRe      = regexp.MustCompile(phonetic.Normalize(`([\p{L}\p{M}]+)\s+(?:ইউনিয়ন|union)`))
)

// unionStopwords are words the union pattern must not capture as a name.
var unionStopwords = map[string]struct{}{
	"in": {}, "the": {}, "of": {}, "a": {}, "এই": {},
}

// Classifier turns questions into intents using the rule tables in rules.go.
type Classifier struct{}

// New creates a classifier.
func New() *Classifier { return &Classifier{} }

// Classify inspects the question and returns its intent. Never fails; an
// unrecognized question becomes a semantic search over the whole text. The
// question is brought to the canonical Unicode form before cue matching, so
// precomposed and decomposed spellings classify identically.
func (c *Classifier) Classify(question string) domain.QueryIntent {
	lang := DetectLanguage(question)
	q := strings.ToLower(strings.TrimSpace(foldDigits(phonetic.Normalize(question))))

	intent := domain.QueryIntent{
		Kind:     domain.IntentSemanticSearch,
		Language: lang,
		FollowUp: isFollowUp(q),
	}

	filters := extractFilters(q)

	// Rules in precedence order; first match wins.
	if hasCue(q, countCues) && !filters.Empty() {
		intent.Kind = domain.IntentAggregateCount
		intent.Filters = filters
		return intent
	}
	if hasCue(q, listCues) && !filters.Empty() {
		intent.Kind = domain.IntentAggregateList
		intent.Filters = filters
		return intent
	}
	if key, name, ok := matchRelation(q); ok {
		intent.Kind = domain.IntentLookupByRelation
		intent.Relation = key
		intent.Name = name
		return intent
	}
	if name, ok := matchIdentity(q); ok {
		intent.Kind = domain.IntentLookupByName
		intent.Name = name
		return intent
	}

	intent.Remainder = strings.TrimSpace(question)
	return intent
}

func hasCue(q string, cues []cue) bool {
	for _, c := range cues {
		if strings.Contains(q, c.phrase) {
			return true
		}
	}
	return false
}

// extractFilters pulls ward, occupation, and union parameters out of the
// question. Missing filters stay zero.
func extractFilters(q string) domain.Filters {
	var f domain.Filters

	if m := wardAfterRe.FindStringSubmatch(q); m != nil {
		f.Ward, _ = strconv.Atoi(m[1])
	} else if m := wardBeforeRe.FindStringSubmatch(q); m != nil {
		f.Ward, _ = strconv.Atoi(m[1])
	}

	for _, occ := range occupations {
		for _, form := range occ.forms {
			if strings.Contains(q, form) {
				f.Occupation = append([]string{occ.canonical}, occ.forms...)
				break
			}
		}
		if len(f.Occupation) > 0 {
			break
		}
	}

	if m := unionRe.FindStringSubmatch(q); m != nil {
		if _, stop := unionStopwords[m[1]]; !stop {
			f.Union = m[1]
		}
	}

	return f
}

// matchRelation finds a relational cue and extracts the adjacent name
// fragment. Returns ok=false when no cue matches or the fragment is empty.
func matchRelation(q string) (domain.RelationKey, string, bool) {
	for _, rc := range relationCues {
		idx := strings.Index(q, rc.phrase)
		if idx < 0 {
			continue
		}
		var fragment string
		if rc.nameBefore {
			fragment = q[:idx]
		} else {
			fragment = q[idx+len(rc.phrase):]
		}
		if name := cleanName(fragment); name != "" {
			return rc.key, name, true
		}
	}
	return "", "", false
}

// matchIdentity finds an identity cue. English cues match by substring with
// the name after; Bengali কে/কারা must stand as their own word, with the name
// before.
func matchIdentity(q string) (string, bool) {
	for _, ic := range identityCues {
		if ic.lang == domain.LangEnglish {
			idx := strings.Index(q, ic.phrase)
			if idx < 0 {
				continue
			}
			if name := cleanName(q[idx+len(ic.phrase):]); name != "" {
				return name, true
			}
			continue
		}

		tokens := strings.Fields(strings.Map(stripPunct, q))
		for i, tok := range tokens {
			if tok == ic.phrase && i > 0 {
				if name := cleanName(strings.Join(tokens[:i], " ")); name != "" {
					return name, true
				}
			}
		}
	}
	return "", false
}

// isFollowUp reports whether a short question references a previous exchange
// by pronoun. Cues match whole tokens only.
func isFollowUp(q string) bool {
	tokens := strings.Fields(strings.Map(stripPunct, q))
	if len(tokens) >= 5 {
		return false
	}
	for _, tok := range tokens {
		for _, c := range followUpCues {
			if tok == c {
				return true
			}
		}
	}
	return false
}

// cleanName trims punctuation, articles, and residual question words from a
// name fragment.
func cleanName(s string) string {
	s = strings.TrimSpace(strings.Map(stripPunct, s))
	tokens := strings.Fields(s)
	for len(tokens) > 0 && isLeadFiller(tokens[0]) {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && isTailFiller(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

func isLeadFiller(tok string) bool {
	return tok == "the"
}

func isTailFiller(tok string) bool {
	switch tok {
	case "কে", "কারা", "who", "is":
		return true
	}
	return false
}

// stripPunct maps sentence punctuation to spaces, keeping letters, digits,
// and Bengali combining marks intact.
func stripPunct(r rune) rune {
	switch r {
	case '?', '!', '।', ',', '.', ';', ':', '"', '\'', '(', ')':
		return ' '
	}
	return r
}
