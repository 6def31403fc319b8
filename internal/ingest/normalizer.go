package ingest

import (
	"strconv"
	"strings"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/phonetic"
)

// Normalize converts one raw dump row into a VoterRecord with derived
// phonetic keys. Identifier, voter ID, and name are required; anything else
// degrades to its zero value. Keys are recomputed here rather than trusted
// from the dump so matching stays consistent with the query-side derivation.
// Textual fields pass through phonetic.Normalize, so stored text and the
// classifier's cue tables share one Unicode form.
func Normalize(raw map[string]string) (domain.VoterRecord, error) {
	id := strings.TrimSpace(raw["id"])
	if id == "" {
		return domain.VoterRecord{}, domain.NewMalformedRecord("", "id")
	}
	voterID := strings.TrimSpace(raw["voter_id"])
	if voterID == "" {
		voterID = strings.TrimSpace(phonetic.FoldDigits(raw["voter_id_bn"]))
	}
	if voterID == "" {
		return domain.VoterRecord{}, domain.NewMalformedRecord(id, "voter_id")
	}
	name := cleanText(raw["name"])
	if name == "" {
		return domain.VoterRecord{}, domain.NewMalformedRecord(id, "name")
	}

	father := cleanText(raw["father_name"])

	rec := domain.VoterRecord{
		ID:          id,
		Serial:      strings.TrimSpace(raw["serial"]),
		Name:        name,
		VoterID:     voterID,
		FatherName:  father,
		MotherName:  cleanText(raw["mother_name"]),
		Gender:      domain.ParseGender(raw["gender"]),
		DateOfBirth: strings.TrimSpace(raw["date_of_birth"]),
		Occupation:  cleanText(raw["occupation"]),
		Address:     cleanText(raw["address"]),
		Ward:        parseWard(raw["ward"], raw["ward_bn"]),
		Union:       cleanText(raw["union"]),
		AreaNo:      strings.TrimSpace(raw["voter_area_no"]),

		PhoneticName:   phonetic.Key(name),
		PhoneticFather: phonetic.Key(father),
	}
	return rec, nil
}

// cleanText trims whitespace and canonicalizes the Unicode form of a free
// text field.
func cleanText(s string) string {
	return phonetic.Normalize(strings.TrimSpace(s))
}

// parseWard reads the ward number, preferring the ASCII column and folding
// the Bengali one when needed. Unparsable wards degrade to zero.
func parseWard(ward, wardBN string) int {
	for _, raw := range []string{ward, wardBN} {
		folded := strings.TrimSpace(phonetic.FoldDigits(raw))
		if folded == "" {
			continue
		}
		if n, err := strconv.Atoi(folded); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
