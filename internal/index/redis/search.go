package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/index"
)

const scoreField = "__vector_score"

// Search runs a KNN query against the active generation via FT.SEARCH.
func (x *Index) Search(ctx context.Context, vector []float32, k int) ([]index.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	if len(vector) != x.dim {
		return nil, fmt.Errorf("query vector dim %d, index dim %d", len(vector), x.dim)
	}

	gen := x.gen.current()
	if gen == 0 {
		return nil, fmt.Errorf("no index generation published: %w", domain.ErrSnapshotNotReady)
	}

	queryStr := fmt.Sprintf("*=>[KNN %d @vector $BLOB]", k)
	args := []string{
		x.indexName(gen), queryStr,
		"RETURN", "1", scoreField,
		"PARAMS", "2", "BLOB", vectorToBytes(vector),
		"DIALECT", "2",
	}

	var raw []rueidis.RedisMessage
	err := x.withRetry(ctx, func(ctx context.Context) error {
		cmd := x.b().Arbitrary("FT.SEARCH").Args(args...).Build()
		var err error
		raw, err = x.do(ctx, cmd).ToArray()
		return err
	})
	if err != nil {
		return nil, unavailable("ft.search", err)
	}

	hits, err := parseKNNResult(raw, x.keyPrefix(gen))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return domain.LessID(hits[i].ID, hits[j].ID)
	})
	return hits, nil
}

// parseKNNResult walks the RESP2 reply. 2-stride: [total, key1, fields1, ...].
func parseKNNResult(raw []rueidis.RedisMessage, prefix string) ([]index.Hit, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	hits := make([]index.Hit, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		hit := index.Hit{ID: strings.TrimPrefix(key, prefix)}
		for j := 0; j+1 < len(fields); j += 2 {
			name, err := fields[j].ToString()
			if err != nil || name != scoreField {
				continue
			}
			value, err := fields[j+1].ToString()
			if err != nil {
				continue
			}
			if dist, err := strconv.ParseFloat(value, 64); err == nil {
				hit.Score = max(0, 1.0-dist) // cosine distance → similarity
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
