// Package voterquery is the embeddable SDK for the bilingual voter-registry
// question pipeline: dump ingestion, phonetic and semantic retrieval, and
// grounded answer generation.
package voterquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/deshdata/voterquery/internal/assembler"
	"github.com/deshdata/voterquery/internal/classifier"
	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/index"
	memoryIndex "github.com/deshdata/voterquery/internal/index/memory"
	redisIndex "github.com/deshdata/voterquery/internal/index/redis"
	"github.com/deshdata/voterquery/internal/ingest"
	"github.com/deshdata/voterquery/internal/matcher"
	"github.com/deshdata/voterquery/internal/registry"
	"github.com/deshdata/voterquery/internal/retriever"
	openaiTransport "github.com/deshdata/voterquery/internal/transport/openai"
	askuc "github.com/deshdata/voterquery/internal/usecase/ask"
	reloaduc "github.com/deshdata/voterquery/internal/usecase/reload"
	statsuc "github.com/deshdata/voterquery/internal/usecase/stats"
)

const defaultReadinessTimeout = 10 * time.Second

// embeddingProvider is what the pipeline needs from an embedding backend.
type embeddingProvider interface {
	domain.Embedder
	domain.BatchEmbedder
}

// Client is the voterquery SDK entry point.
type Client struct {
	vectors   index.VectorIndex
	askSvc    *askuc.Service
	statsSvc  *statsuc.Service
	reloadSvc *reloaduc.Service
}

// New creates a voterquery Client. The dataset is not loaded until Reload.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:     "memory",
		dimensions: 1536,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	if cfg.dumpPath == "" {
		return nil, errors.New("voterquery: dump path required (use WithDump)")
	}

	vectors, err := createIndex(cfg)
	if err != nil {
		return nil, err
	}

	embedder, generator := createProviders(cfg)

	holder := registry.NewHolder()
	loader := ingest.NewLoader(cfg.logger, cfg.maxSkipRatio)
	reloadSvc := reloaduc.New(
		loader, holder, embedder, vectors,
		cfg.dumpPath, cfg.batchSize, cfg.logger,
	)

	phonetics := matcher.New(cfg.phoneticThreshold)
	retrieve := retriever.New(phonetics, embedder, vectors, cfg.topK, cfg.maxListSize)
	assemble := assembler.New(cfg.charBudget, cfg.maxListSize)

	return &Client{
		vectors:   vectors,
		askSvc:    askuc.New(holder, classifier.New(), retrieve, assemble, generator, cfg.logger),
		statsSvc:  statsuc.New(holder),
		reloadSvc: reloadSvc,
	}, nil
}

func createIndex(cfg *clientConfig) (index.VectorIndex, error) {
	switch cfg.driver {
	case "memory":
		return memoryIndex.New(), nil
	case "redis":
		idx, err := redisIndex.New(redisIndex.Config{
			Addrs:           cfg.addrs,
			Username:        cfg.username,
			Password:        cfg.password,
			KeyPrefix:       cfg.keyPrefix,
			VectorDim:       cfg.dimensions,
			HNSWM:           cfg.hnswM,
			HNSWEFConstruct: cfg.hnswEFConstruct,
		})
		if err != nil {
			return nil, fmt.Errorf("voterquery: create redis index: %w", err)
		}
		if err := idx.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			idx.Close()
			return nil, fmt.Errorf("voterquery: redis index not ready: %w", err)
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("voterquery: unknown index driver %q", cfg.driver)
	}
}

func createProviders(cfg *clientConfig) (embeddingProvider, domain.Generator) {
	if cfg.openaiAPIKey != "" {
		embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:  cfg.openaiAPIKey,
			BaseURL: cfg.openaiBaseURL,
			Model:   cfg.embeddingModel,
			Logger:  cfg.logger,
		})
		generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:      cfg.openaiAPIKey,
			BaseURL:     cfg.openaiBaseURL,
			Model:       cfg.chatModel,
			Temperature: cfg.temperature,
			Logger:      cfg.logger,
		})
		return embedder, generator
	}

	var embedder embeddingProvider = noopProvider{}
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	}

	var generator domain.Generator = noopProvider{}
	if cfg.generator != nil {
		generator = &generatorAdapter{inner: cfg.generator}
	}
	return embedder, generator
}

// Close releases index resources.
func (c *Client) Close() {
	c.vectors.Close()
}

// Reload parses the dump, embeds every record, rebuilds the vector index, and
// publishes the new snapshot atomically. Returns the record count.
func (c *Client) Reload(ctx context.Context) (int, error) {
	return c.reloadSvc.Reload(ctx)
}

// Ask answers one question end to end.
func (c *Client) Ask(ctx context.Context, question string) (Answer, error) {
	resp, err := c.askSvc.Ask(ctx, question)
	if err != nil {
		return Answer{}, err
	}
	return Answer{
		Text:      resp.Answer,
		Intent:    string(resp.Intent.Kind),
		Language:  string(resp.Intent.Language),
		Reason:    string(resp.Result.Reason()),
		Truncated: resp.Payload.Truncated,
		FollowUp:  resp.Intent.FollowUp,
		Sources:   matchesFromDomain(resp.Result.Matches),
		Aggregate: aggregateFromDomain(resp.Result.Aggregate),
	}, nil
}

// Search runs classification, retrieval, and assembly without generation.
func (c *Client) Search(ctx context.Context, question string) (SearchResult, error) {
	resp, err := c.askSvc.Search(ctx, question)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{
		Intent:    string(resp.Intent.Kind),
		Language:  string(resp.Intent.Language),
		Reason:    string(resp.Result.Reason()),
		Truncated: resp.Payload.Truncated,
		FollowUp:  resp.Intent.FollowUp,
		Context:   resp.Payload.Text,
		Matches:   matchesFromDomain(resp.Result.Matches),
		Aggregate: aggregateFromDomain(resp.Result.Aggregate),
	}, nil
}

// Stats returns the active snapshot's dataset breakdowns.
func (c *Client) Stats() (Stats, error) {
	st, err := c.statsSvc.Stats()
	if err != nil {
		return Stats{}, err
	}
	return statsFromDomain(st), nil
}

// Voter looks up one record by identifier.
func (c *Client) Voter(id string) (Voter, error) {
	rec, err := c.statsSvc.Voter(id)
	if err != nil {
		return Voter{}, err
	}
	return voterFromDomain(rec), nil
}

// embedderAdapter wraps the public Embedder to satisfy the internal
// embedding contracts. Batch support is used when the provider offers it.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := a.inner.(BatchEmbedder); ok {
		vecs, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
	}
	return domain.BatchFallback(ctx, a, texts)
}

// generatorAdapter wraps the public Generator to satisfy domain.Generator.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, payload domain.ContextPayload, question string) (string, error) {
	return a.inner.Generate(ctx, Prompt{
		Language:  string(payload.Language),
		Intent:    string(payload.Intent),
		Text:      payload.Text,
		Records:   payload.Records,
		Truncated: payload.Truncated,
	}, question)
}

// noopProvider rejects every call. Used when no provider is configured: the
// Client constructs, but Reload and Ask fail with the matching sentinel.
type noopProvider struct{}

func (noopProvider) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"voterquery: embedder not configured (use WithOpenAI or WithEmbedder): %w",
		domain.ErrRetrievalUnavailable,
	)
}

func (noopProvider) BatchEmbed(_ context.Context, _ []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchEmbeddingResult{}, fmt.Errorf(
		"voterquery: embedder not configured (use WithOpenAI or WithEmbedder): %w",
		domain.ErrRetrievalUnavailable,
	)
}

func (noopProvider) Generate(_ context.Context, _ domain.ContextPayload, _ string) (string, error) {
	return "", fmt.Errorf(
		"voterquery: generator not configured (use WithOpenAI or WithGenerator): %w",
		domain.ErrGenerationUnavailable,
	)
}
