package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord signals a raw record missing a required field.
	// Ingestion skips and logs it; the load fails only above the skip-ratio
	// threshold.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrRetrievalUnavailable signals an embedding or index outage that
	// survived the bounded retries.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrGenerationUnavailable signals a generation-service outage that
	// survived the bounded retries.
	ErrGenerationUnavailable = errors.New("generation unavailable")
	// ErrSnapshotNotReady signals that no dataset snapshot has been loaded.
	ErrSnapshotNotReady = errors.New("snapshot not ready")
	// ErrRecordNotFound signals a missing record ID.
	ErrRecordNotFound = errors.New("record not found")
)

// MalformedRecordError wraps ErrMalformedRecord with the offending field.
type MalformedRecordError struct {
	Field string
	ID    string
}

func (e *MalformedRecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: missing %s", ErrMalformedRecord.Error(), e.ID, e.Field)
	}
	return fmt.Sprintf("%s: missing %s", ErrMalformedRecord.Error(), e.Field)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// NewMalformedRecord creates a malformed record error for a missing field.
func NewMalformedRecord(id, field string) error {
	return &MalformedRecordError{ID: id, Field: field}
}
