package domain

// ContextPayload is the bounded, language-tagged block handed to the
// generation service. Truncation is always explicit.
type ContextPayload struct {
	Language  Language
	Intent    IntentKind
	Text      string
	Records   int
	Truncated bool
}
