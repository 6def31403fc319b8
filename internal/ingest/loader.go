package ingest

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/registry"
)

// DefaultMaxSkipRatio bounds how many malformed rows a load may drop before
// the whole load is rejected.
const DefaultMaxSkipRatio = 0.2

// Loader reads a voter dump from disk and produces registry snapshots.
type Loader struct {
	log          *zap.Logger
	maxSkipRatio float64
}

func NewLoader(log *zap.Logger, maxSkipRatio float64) *Loader {
	if maxSkipRatio <= 0 {
		maxSkipRatio = DefaultMaxSkipRatio
	}
	return &Loader{log: log, maxSkipRatio: maxSkipRatio}
}

// Load parses the dump at path, normalizes each row, and builds a snapshot.
// Malformed rows are skipped and logged individually; the load fails when
// the skip ratio crosses the configured bound.
func (l *Loader) Load(path string) (*registry.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()

	rows, err := ParseDump(f)
	if err != nil {
		return nil, fmt.Errorf("parse dump %s: %w", path, err)
	}
	return l.buildSnapshot(rows)
}

func (l *Loader) buildSnapshot(rows []map[string]string) (*registry.Snapshot, error) {
	records := make([]domain.VoterRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, err := Normalize(row)
		if err != nil {
			skipped++
			l.log.Warn("skipping malformed voter row",
				zap.String("row_id", row["id"]),
				zap.Error(err),
			)
			continue
		}
		records = append(records, rec)
	}

	ratio := float64(skipped) / float64(len(rows))
	if ratio > l.maxSkipRatio {
		return nil, fmt.Errorf("dump quality too low: skipped %d of %d rows: %w",
			skipped, len(rows), domain.ErrMalformedRecord)
	}

	l.log.Info("voter dump loaded",
		zap.Int("records", len(records)),
		zap.Int("skipped", skipped),
	)
	return registry.NewSnapshot(records), nil
}
