package domain

import (
	"fmt"
	"strings"
)

// Gender of a registrant.
type Gender string

// Gender values as they appear after normalization.
const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = ""
)

// ParseGender maps raw dump values (Bengali or English) to a Gender.
func ParseGender(raw string) Gender {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m", "পুরুষ":
		return GenderMale
	case "female", "f", "মহিলা", "নারী":
		return GenderFemale
	case "":
		return GenderUnknown
	default:
		return GenderOther
	}
}

// VoterRecord is one registrant in the registry. Records are built once at
// ingestion and never mutated; dataset reloads replace the whole snapshot.
type VoterRecord struct {
	ID          string
	Serial      string
	Name        string
	VoterID     string
	FatherName  string
	MotherName  string
	Gender      Gender
	DateOfBirth string // empty when unknown
	Occupation  string // empty when unknown
	Address     string
	Ward        int
	Union       string
	AreaNo      string

	// Derived at normalization time, pure functions of the source names.
	PhoneticName   string
	PhoneticFather string
}

// SearchText renders the record as a bilingual labelled document for
// embedding. Field layout follows the voter card the chat UI renders.
func (v *VoterRecord) SearchText() string {
	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte('\n')
	}
	line("নাম (Name)", v.Name)
	line("Phonetic Name", v.PhoneticName)
	line("পিতার নাম (Father's Name)", v.FatherName)
	line("Phonetic Father", v.PhoneticFather)
	line("মাতার নাম (Mother's Name)", v.MotherName)
	line("পেশা (Occupation)", v.Occupation)
	line("জন্ম তারিখ (Date of Birth)", v.DateOfBirth)
	line("ঠিকানা (Address)", v.Address)
	if v.Ward > 0 {
		line("ওয়ার্ড নং (Ward No)", fmt.Sprintf("%d", v.Ward))
	}
	line("ইউনিয়ন (Union)", v.Union)
	line("লিঙ্গ (Gender)", string(v.Gender))
	line("ক্রমিক নং (Serial)", v.Serial)
	return strings.TrimRight(b.String(), "\n")
}
