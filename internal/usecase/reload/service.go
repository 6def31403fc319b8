// Package reload rebuilds the registry snapshot and vector index from the
// source dump and publishes both atomically.
package reload

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/index"
	"github.com/deshdata/voterquery/internal/metrics"
	"github.com/deshdata/voterquery/internal/registry"
)

// DefaultBatchSize bounds how many record texts go into one embedding call.
const DefaultBatchSize = 64

// Loader parses the dump into a snapshot.
type Loader interface {
	Load(path string) (*registry.Snapshot, error)
}

// Publisher swaps the active snapshot.
type Publisher interface {
	Swap(*registry.Snapshot)
}

// Service coordinates one full rebuild pass.
type Service struct {
	loader    Loader
	publisher Publisher
	embedder  domain.BatchEmbedder
	vectors   index.VectorIndex

	dumpPath  string
	batchSize int
	logger    *zap.Logger
}

// New creates a reload service. A non-positive batch size selects the
// default.
func New(
	loader Loader,
	publisher Publisher,
	embedder domain.BatchEmbedder,
	vectors index.VectorIndex,
	dumpPath string,
	batchSize int,
	logger *zap.Logger,
) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{
		loader:    loader,
		publisher: publisher,
		embedder:  embedder,
		vectors:   vectors,
		dumpPath:  dumpPath,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Reload loads the dump, embeds every record, rebuilds the vector index,
// then publishes the snapshot. Any failure leaves the previous snapshot and
// index generation serving; there is no partial visibility.
func (s *Service) Reload(ctx context.Context) (int, error) {
	n, err := s.reload(ctx)
	if err != nil {
		metrics.SnapshotReloadsTotal.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.SnapshotReloadsTotal.WithLabelValues("success").Inc()
	metrics.SnapshotRecords.Set(float64(n))
	return n, nil
}

func (s *Service) reload(ctx context.Context) (int, error) {
	snap, err := s.loader.Load(s.dumpPath)
	if err != nil {
		return 0, fmt.Errorf("load dump: %w", err)
	}

	entries, err := s.embedRecords(ctx, snap.Records())
	if err != nil {
		return 0, err
	}

	if err := s.vectors.Rebuild(ctx, entries); err != nil {
		return 0, fmt.Errorf("rebuild vector index: %w", err)
	}

	s.publisher.Swap(snap)
	s.logger.Info("snapshot published",
		zap.Int("records", snap.Len()),
		zap.String("dump", s.dumpPath),
	)
	return snap.Len(), nil
}

func (s *Service) embedRecords(ctx context.Context, records []domain.VoterRecord) ([]index.Entry, error) {
	entries := make([]index.Entry, 0, len(records))

	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))
		chunk := records[start:end]

		texts := make([]string, len(chunk))
		for i := range chunk {
			texts[i] = chunk[i].SearchText()
		}

		res, err := s.embedder.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed records [%d:%d]: %w", start, end, err)
		}
		for i := range chunk {
			entries = append(entries, index.Entry{ID: chunk[i].ID, Vector: res.Embeddings[i]})
		}
	}
	return entries, nil
}
