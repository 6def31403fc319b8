package phonetic

import "strings"

// bengaliDigits maps ০-৯ to ASCII.
var bengaliDigits = strings.NewReplacer(
	"০", "0", "১", "1", "২", "2", "৩", "3", "৪", "4",
	"৫", "5", "৬", "6", "৭", "7", "৮", "8", "৯", "9",
)

// FoldDigits converts Bengali digits to their ASCII equivalents. Dump fields
// and questions both mix scripts for numbers.
func FoldDigits(s string) string {
	return bengaliDigits.Replace(s)
}
