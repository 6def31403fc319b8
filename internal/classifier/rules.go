package classifier

import (
	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/phonetic"
)

// The classification policy is data: cue tables checked in precedence order
// (count, list, relation, identity), each entry tagged with its language so
// the policy is testable independently of the code paths. Every table passes
// through phonetic.Normalize at init, so matching does not depend on the
// Unicode form the source file happens to be saved in.

// cue is a phrase signalling an intent.
type cue struct {
	phrase string
	lang   domain.Language
}

func normalizeCues(cs []cue) []cue {
	for i := range cs {
		cs[i].phrase = phonetic.Normalize(cs[i].phrase)
	}
	return cs
}

var countCues = normalizeCues([]cue{
	{"কতজন", domain.LangBengali},
	{"কত জন", domain.LangBengali},
	{"কয়জন", domain.LangBengali},
	{"সংখ্যা", domain.LangBengali},
	{"how many", domain.LangEnglish},
	{"number of", domain.LangEnglish},
	{"count of", domain.LangEnglish},
	{"total", domain.LangEnglish},
})

var listCues = normalizeCues([]cue{
	{"তালিকা", domain.LangBengali},
	{"লিস্ট", domain.LangBengali},
	{"list", domain.LangEnglish},
})

// relationCue binds a relational phrase to the record key it searches and to
// the side of the cue holding the name fragment.
type relationCue struct {
	phrase     string
	lang       domain.Language
	key        domain.RelationKey
	nameBefore bool
}

func normalizeRelationCues(cs []relationCue) []relationCue {
	for i := range cs {
		cs[i].phrase = phonetic.Normalize(cs[i].phrase)
	}
	return cs
}

var relationCues = normalizeRelationCues([]relationCue{
	{"এর ছেলে", domain.LangBengali, domain.RelationFatherKey, true},
	{"এর মেয়ে", domain.LangBengali, domain.RelationFatherKey, true},
	{"এর সন্তান", domain.LangBengali, domain.RelationFatherKey, true},
	{"এর বাবা", domain.LangBengali, domain.RelationNameKey, true},
	{"এর পিতা", domain.LangBengali, domain.RelationNameKey, true},
	{"son of", domain.LangEnglish, domain.RelationFatherKey, false},
	{"daughter of", domain.LangEnglish, domain.RelationFatherKey, false},
	{"children of", domain.LangEnglish, domain.RelationFatherKey, false},
	{"father of", domain.LangEnglish, domain.RelationNameKey, false},
})

// identityCue binds an identity phrase to the side holding the name.
type identityCue struct {
	phrase     string
	lang       domain.Language
	nameBefore bool
}

func normalizeIdentityCues(cs []identityCue) []identityCue {
	for i := range cs {
		cs[i].phrase = phonetic.Normalize(cs[i].phrase)
	}
	return cs
}

var identityCues = normalizeIdentityCues([]identityCue{
	{"who is", domain.LangEnglish, false},
	{"who was", domain.LangEnglish, false},
	{"কে", domain.LangBengali, true},
	{"কারা", domain.LangBengali, true},
})

// occupationEntry groups the recognizable stems of one occupation. The first
// form is the dataset-script canonical used in filter descriptions; records
// match any form by substring.
type occupationEntry struct {
	canonical string
	forms     []string
}

func normalizeOccupations(es []occupationEntry) []occupationEntry {
	for i := range es {
		es[i].canonical = phonetic.Normalize(es[i].canonical)
		for j := range es[i].forms {
			es[i].forms[j] = phonetic.Normalize(es[i].forms[j])
		}
	}
	return es
}

var occupations = normalizeOccupations([]occupationEntry{
	{"কৃষক", []string{"কৃষক", "চাষী", "farmer", "krishok"}},
	{"শিক্ষক", []string{"শিক্ষক", "শিক্ষিকা", "teacher"}},
	{"ছাত্র", []string{"ছাত্র", "ছাত্রী", "student"}},
	{"গৃহিণী", []string{"গৃহিণী", "housewife"}},
	{"ব্যবসায়ী", []string{"ব্যবসায়ী", "ব্যবসা", "business"}},
	{"জেলে", []string{"জেলে", "fisherman"}},
	{"শ্রমিক", []string{"শ্রমিক", "laborer", "labourer", "worker"}},
	{"চালক", []string{"চালক", "ড্রাইভার", "driver"}},
	{"দর্জি", []string{"দর্জি", "tailor"}},
	{"ডাক্তার", []string{"ডাক্তার", "চিকিৎসক", "doctor"}},
})

func normalizeAll(ss []string) []string {
	for i := range ss {
		ss[i] = phonetic.Normalize(ss[i])
	}
	return ss
}

// followUpCues mark pronoun-style references to a previous exchange
// (the conversation manager in the presentation layer acts on the flag).
var followUpCues = normalizeAll([]string{
	"তার", "তাদের", "তিনি", "সেই", "ঐ",
	"his", "her", "their", "they", "that", "those",
})
