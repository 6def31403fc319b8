package ask

import (
	"context"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/registry"
)

// Classifier turns a raw question into an intent. Total: it never fails.
type Classifier interface {
	Classify(question string) domain.QueryIntent
}

// Retriever produces the candidate set for one intent against a snapshot.
type Retriever interface {
	Retrieve(ctx context.Context, intent domain.QueryIntent, snap *registry.Snapshot) (domain.RetrievalResult, error)
}

// Assembler renders the bounded context payload.
type Assembler interface {
	Assemble(result domain.RetrievalResult, intent domain.QueryIntent) domain.ContextPayload
}

// SnapshotSource yields the active registry snapshot.
type SnapshotSource interface {
	Load() (*registry.Snapshot, error)
}
