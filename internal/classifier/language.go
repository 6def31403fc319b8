package classifier

import (
	"unicode"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/phonetic"
)

// DetectLanguage is script-based: Bengali block characters present and at
// least as frequent as Latin letters ⇒ bn, otherwise en. Mixed-script input
// resolves to the majority script by character count.
func DetectLanguage(s string) domain.Language {
	var bengali, latin int
	for _, r := range s {
		switch {
		case r >= 0x0980 && r <= 0x09FF:
			bengali++
		case unicode.IsLetter(r) && r < 0x0250:
			latin++
		}
	}
	if bengali > 0 && bengali >= latin {
		return domain.LangBengali
	}
	return domain.LangEnglish
}

// foldDigits converts Bengali digits to ASCII so ward numbers extract
// uniformly.
func foldDigits(s string) string {
	return phonetic.FoldDigits(s)
}
