package registry

import (
	"sync/atomic"

	"github.com/deshdata/voterquery/internal/domain"
)

// Holder publishes the active snapshot. Reload swaps the pointer atomically:
// queries in flight finish against the old snapshot, new queries see the new
// one, and no reader ever observes a partially-built collection.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder creates an empty holder. Load fails until the first Swap.
func NewHolder() *Holder { return &Holder{} }

// Load returns the active snapshot, or ErrSnapshotNotReady before the first
// ingestion pass completes.
func (h *Holder) Load() (*Snapshot, error) {
	s := h.current.Load()
	if s == nil {
		return nil, domain.ErrSnapshotNotReady
	}
	return s, nil
}

// Swap publishes a new snapshot.
func (h *Holder) Swap(s *Snapshot) {
	h.current.Store(s)
}

// Ready reports whether a snapshot has been published.
func (h *Holder) Ready() bool {
	return h.current.Load() != nil
}
