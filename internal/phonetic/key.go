// Package phonetic derives script-independent signatures from personal names
// so that Bengali spellings and their Latin transliterations compare equal.
package phonetic

import (
	"strings"
	"unicode"
)

// maxWordKey caps each per-word signature so long compound names stay
// comparable to their short spellings.
const maxWordKey = 8

// honorifics are dropped before key derivation: they vary freely between
// records ("Md.", "মোঃ") without changing the spoken name.
var honorifics = map[string]struct{}{
	"md":   {},
	"mohd": {},
	"mst":  {},
	"mr":   {},
	"mrs":  {},
	"মো":    {},
	"মোঃ":   {},
	"মোছা":  {},
	"মোছাঃ": {},
	"মোসা":  {},
	"মোসাঃ": {},
}

// bengali maps Bengali codepoints to Latin approximations. Aspirated and
// unaspirated consonants share a class (খ/ক → k), as do the three sibilants,
// matching how romanized spellings drift in practice.
var bengali = map[rune]string{
	// independent vowels
	'অ': "a", 'আ': "a", 'ই': "i", 'ঈ': "i", 'উ': "u", 'ঊ': "u",
	'ঋ': "ri", 'এ': "e", 'ঐ': "oi", 'ও': "o", 'ঔ': "ou",
	// consonants
	'ক': "k", 'খ': "k", 'গ': "g", 'ঘ': "g", 'ঙ': "n",
	'চ': "c", 'ছ': "c", 'জ': "j", 'ঝ': "j", 'ঞ': "n",
	'ট': "t", 'ঠ': "t", 'ড': "d", 'ঢ': "d", 'ণ': "n",
	'ত': "t", 'থ': "t", 'দ': "d", 'ধ': "d", 'ন': "n",
	'প': "p", 'ফ': "p", 'ব': "b", 'ভ': "b", 'ম': "m",
	'য': "j", 'র': "r", 'ল': "l", 'শ': "s", 'ষ': "s", 'স': "s", 'হ': "h",
	// U+09DC, U+09DD, U+09DF: Normalize folds the nukta pairs into these
	'\u09dc': "r", '\u09dd': "r", '\u09df': "y", 'ৎ': "t", 'ং': "n",
	// vowel signs
	'া': "a", 'ি': "i", 'ী': "i", 'ু': "u", 'ূ': "u",
	'ৃ': "ri", 'ে': "e", 'ৈ': "oi", 'ো': "o", 'ৌ': "ou",
}

// hasanta suppresses the inherent vowel and forms conjuncts.
const hasanta = '্'

// Key derives the phonetic signature of a name: per-word reduced signatures
// joined by single spaces. Deterministic pure function of the input.
func Key(name string) string {
	words := splitWords(name)
	keys := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := honorifics[w]; ok {
			continue
		}
		if k := wordKey(w); k != "" {
			keys = append(keys, k)
		}
	}
	return strings.Join(keys, " ")
}

// splitWords normalizes the Unicode form, lowercases, strips punctuation and
// digits, and splits on whitespace. Bengali combining marks are kept with
// their word.
func splitWords(s string) []string {
	var b strings.Builder
	for _, r := range Normalize(s) {
		switch {
		case r >= 0x0980 && r <= 0x09FF:
			b.WriteRune(r)
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}

// wordKey romanizes one word and reduces it to a consonant skeleton.
func wordKey(word string) string {
	rom := romanize(word)
	return reduce(rom)
}

// romanize maps Bengali codepoints through the transliteration table and
// passes ASCII letters unchanged. The hasanta is consumed; a following য
// (jo-phola) is treated as the glide y rather than j.
func romanize(word string) string {
	var b strings.Builder
	var prev rune
	for _, r := range word {
		if r == hasanta {
			prev = r
			continue
		}
		if r == 'য' && prev == hasanta {
			b.WriteByte('y')
			prev = r
			continue
		}
		if lat, ok := bengali[r]; ok {
			b.WriteString(lat)
		} else if r < 0x0980 || r > 0x09FF {
			b.WriteRune(r)
		}
		// other Bengali signs (candrabindu, visarga) carry no key weight
		prev = r
	}
	return b.String()
}

// reduce collapses a romanized word to its signature: digraph aspirations
// fold into their base consonant, equivalence classes merge (v/w→b, f→p,
// z→j, q→k), non-initial vowels drop, runs collapse.
func reduce(rom string) string {
	runes := []rune(rom)
	var out []rune
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		// digraphs: consonant + h loses the h (kh, gh, th, dh, bh, sh, ph, ch)
		digraph := false
		if i+1 < len(runes) && runes[i+1] == 'h' {
			switch r {
			case 'k', 'g', 't', 'd', 'j', 'b', 's', 'p', 'c', 'n':
				digraph = true
				i++
			}
		}
		switch r {
		case 'v', 'w':
			r = 'b'
		case 'f':
			r = 'p'
		case 'z':
			r = 'j'
		case 'q', 'x':
			r = 'k'
		case 'c':
			// the ch digraph keeps its c class; bare c is the hard sound
			if !digraph {
				r = 'k'
			}
		}
		isVowel := r == 'a' || r == 'e' || r == 'i' || r == 'o' || r == 'u' || r == 'y'
		if isVowel {
			if len(out) == 0 {
				out = append(out, 'a') // word-initial vowel marks the onset
			}
			continue
		}
		if r == 'h' {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == r {
			continue
		}
		out = append(out, r)
		if len(out) >= maxWordKey {
			break
		}
	}
	if len(out) == 0 && len(runes) > 0 {
		return "a"
	}
	return string(out)
}
