package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/redis/rueidis"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/index"
)

const vectorField = "__vector"

// generation tracks the active index generation. Zero means no generation
// has been published yet.
type generation struct {
	n atomic.Uint64
}

func (g *generation) current() uint64     { return g.n.Load() }
func (g *generation) publish(next uint64) { g.n.Store(next) }

func (x *Index) keyPrefix(gen uint64) string {
	return fmt.Sprintf("%s:g%d:", x.prefix, gen)
}

func (x *Index) indexName(gen uint64) string {
	return x.keyPrefix(gen) + "idx"
}

// Rebuild writes all entries under a new generation prefix, creates its FT
// index, publishes the generation, then drops the previous one. A failed
// rebuild leaves the previous generation serving. Transient failures are
// retried under the per-call policy; exhausted retries surface as
// ErrRetrievalUnavailable.
func (x *Index) Rebuild(ctx context.Context, entries []index.Entry) error {
	old := x.gen.current()
	next := old + 1

	for _, e := range entries {
		if len(e.Vector) != x.dim {
			return fmt.Errorf("entry %s: vector dim %d, index dim %d", e.ID, len(e.Vector), x.dim)
		}
	}

	err := x.withRetry(ctx, func(ctx context.Context) error {
		return x.createIndex(ctx, next)
	})
	if err != nil {
		return unavailable(fmt.Sprintf("create index g%d", next), err)
	}

	prefix := x.keyPrefix(next)
	err = x.withRetry(ctx, func(ctx context.Context) error {
		cmds := make(rueidis.Commands, 0, len(entries))
		for _, e := range entries {
			cmds = append(cmds, x.b().Hset().Key(prefix+e.ID).
				FieldValue().FieldValue(vectorField, vectorToBytes(e.Vector)).Build())
		}
		for _, resp := range x.client.DoMulti(ctx, cmds...) {
			if err := resp.Error(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		x.dropGeneration(ctx, next)
		return unavailable(fmt.Sprintf("write entries g%d", next), err)
	}

	x.gen.publish(next)
	if old > 0 {
		x.dropGeneration(ctx, old)
	}
	return nil
}

func (x *Index) createIndex(ctx context.Context, gen uint64) error {
	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(x.dim),
		"DISTANCE_METRIC", "COSINE",
		"M", strconv.Itoa(x.m),
		"EF_CONSTRUCTION", strconv.Itoa(x.efConstruct),
	}

	args := []string{
		x.indexName(gen),
		"ON", "HASH",
		"PREFIX", "1", x.keyPrefix(gen),
		"SCHEMA",
		vectorField, "AS", "vector", "VECTOR", "HNSW", strconv.Itoa(len(attrs)),
	}
	args = append(args, attrs...)

	cmd := x.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := x.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			// Stale leftover from a crashed rebuild; replace it.
			x.dropGeneration(ctx, gen)
			return x.do(ctx, x.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error()
		}
		return err
	}
	return nil
}

// dropGeneration removes an index and its documents. Best effort: a missing
// index is fine, and a failed drop only leaks keys until the next rebuild.
func (x *Index) dropGeneration(ctx context.Context, gen uint64) {
	cmd := x.b().Arbitrary("FT.DROPINDEX").Args(x.indexName(gen), "DD").Build()
	_ = x.do(ctx, cmd).Error()
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrRetrievalUnavailable)
}
