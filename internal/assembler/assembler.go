// Package assembler formats a retrieval result into the bounded,
// language-tagged context block handed to the generation service.
package assembler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/deshdata/voterquery/internal/domain"
)

// Defaults for payload bounds. The character budget bounds downstream token
// cost; the record cap matches the retriever's list bound.
const (
	DefaultCharBudget = 4000
	DefaultMaxRecords = 50
)

// Assembler renders context payloads within fixed size bounds.
type Assembler struct {
	charBudget int
	maxRecords int
}

// New creates an assembler. Non-positive bounds select the defaults.
func New(charBudget, maxRecords int) *Assembler {
	if charBudget <= 0 {
		charBudget = DefaultCharBudget
	}
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Assembler{charBudget: charBudget, maxRecords: maxRecords}
}

// Assemble renders the payload for one retrieval. Truncation from the
// retriever carries through; additional truncation here is flagged, never
// silent.
func (a *Assembler) Assemble(result domain.RetrievalResult, intent domain.QueryIntent) domain.ContextPayload {
	payload := domain.ContextPayload{
		Language:  intent.Language,
		Intent:    intent.Kind,
		Truncated: result.Truncated,
	}

	if result.Empty() {
		payload.Text = "কোনো রেকর্ড পাওয়া যায়নি (No matching records found)."
		return payload
	}

	if result.Aggregate != nil {
		payload.Text = fmt.Sprintf(
			"মোট সংখ্যা (Total Count): %d\nশর্ত (Filter): %s",
			result.Aggregate.Count, result.Aggregate.Description,
		)
		return payload
	}

	// The budget counts runes, not bytes; Bengali text is three bytes per
	// character in UTF-8 and must not pay a threefold penalty.
	var b strings.Builder
	used := 0
	for i, m := range result.Matches {
		if i == a.maxRecords {
			payload.Truncated = true
			break
		}
		card := renderCard(i+1, m)
		cardLen := utf8.RuneCountInString(card)
		if used > 0 && used+cardLen+2 > a.charBudget {
			payload.Truncated = true
			break
		}
		if used > 0 {
			b.WriteString("\n\n")
			used += 2
		}
		b.WriteString(card)
		used += cardLen
		payload.Records++
	}
	payload.Text = b.String()
	return payload
}

// renderCard lays out one record the way the chat UI renders voter cards.
func renderCard(n int, m domain.Match) string {
	rec := m.Record

	var b strings.Builder
	fmt.Fprintf(&b, "রেকর্ড (Record) %d [%s %.2f]\n", n, m.Reason, m.Score)

	line := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte('\n')
	}
	line("নাম (Name)", rec.Name)
	line("ভোটার নং (Voter ID)", rec.VoterID)
	line("পিতার নাম (Father's Name)", rec.FatherName)
	line("মাতার নাম (Mother's Name)", rec.MotherName)
	line("পেশা (Occupation)", rec.Occupation)
	line("জন্ম তারিখ (Date of Birth)", rec.DateOfBirth)
	line("ঠিকানা (Address)", rec.Address)
	if rec.Ward > 0 {
		line("ওয়ার্ড নং (Ward No)", strconv.Itoa(rec.Ward))
	}
	line("ইউনিয়ন (Union)", rec.Union)
	line("লিঙ্গ (Gender)", string(rec.Gender))
	return strings.TrimRight(b.String(), "\n")
}
