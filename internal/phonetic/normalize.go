package phonetic

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// nuktaForms folds decomposed nukta pairs into their precomposed letters
// U+09DC, U+09DD, U+09DF. These three are Unicode composition exclusions, so
// NFC leaves them decomposed and the fold has to be explicit.
var nuktaForms = strings.NewReplacer(
	"\u09a1\u09bc", "\u09dc",
	"\u09a2\u09bc", "\u09dd",
	"\u09af\u09bc", "\u09df",
)

// Normalize brings text to one canonical Unicode form: NFC composition plus
// the nukta fold. Key derivation and query-side cue matching both run on its
// output, so either encoding of the same name compares equal.
func Normalize(s string) string {
	return nuktaForms.Replace(norm.NFC.String(s))
}
