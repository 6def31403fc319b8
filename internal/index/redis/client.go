// Package redis is the VectorIndex driver backed by Redis 8+ vector search
// (FT.CREATE / FT.SEARCH over HNSW). Rebuilds write a fresh generation of
// keys and index, then swap; readers never observe a half-built index.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"
)

// Config holds connection and index parameters.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string // defaults to "voterquery"
	VectorDim int

	HNSWM           int // defaults to 16
	HNSWEFConstruct int // defaults to 200

	// Per-call policy for index operations. Zero values select the
	// defaults in retry.go.
	OpTimeout      time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Index implements index.VectorIndex via rueidis.
type Index struct {
	client rueidis.Client

	prefix      string
	dim         int
	m           int
	efConstruct int

	opTimeout      time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	gen generation
}

// New connects to Redis and returns an index with no active generation.
// Search fails until the first Rebuild completes.
func New(cfg Config) (*Index, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.VectorDim <= 0 {
		return nil, fmt.Errorf("vector dim must be positive")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "voterquery"
	}
	m := cfg.HNSWM
	if m <= 0 {
		m = 16
	}
	ef := cfg.HNSWEFConstruct
	if ef <= 0 {
		ef = 200
	}
	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	initialBackoff := cfg.InitialBackoff
	if initialBackoff <= 0 {
		initialBackoff = defaultInitialBackoff
	}
	maxBackoff := cfg.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = defaultMaxBackoff
	}

	return &Index{
		client:         client,
		prefix:         prefix,
		dim:            cfg.VectorDim,
		m:              m,
		efConstruct:    ef,
		opTimeout:      opTimeout,
		maxAttempts:    attempts,
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
	}, nil
}

// Ping checks connectivity.
func (x *Index) Ping(ctx context.Context) error {
	cmd := x.client.B().Ping().Build()
	if err := x.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or the timeout expires.
func (x *Index) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis: %w", ctx.Err())
		case <-ticker.C:
			if err := x.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close shuts down the client.
func (x *Index) Close() {
	x.client.Close()
}

func (x *Index) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return x.client.Do(ctx, cmd)
}

func (x *Index) b() rueidis.Builder {
	return x.client.B()
}

// isRedisErr checks if err is a Redis server error containing substr.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
