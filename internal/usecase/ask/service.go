// Package ask orchestrates one question end to end: classify, retrieve,
// assemble, generate.
package ask

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/metrics"
)

// Response is the full outcome of one question, including the retrieval
// sources for display and debugging.
type Response struct {
	Answer  string
	Intent  domain.QueryIntent
	Result  domain.RetrievalResult
	Payload domain.ContextPayload
}

// Service runs the question pipeline.
type Service struct {
	snapshots  SnapshotSource
	classifier Classifier
	retriever  Retriever
	assembler  Assembler
	generator  domain.Generator
	logger     *zap.Logger
}

// New creates an ask service.
func New(
	snapshots SnapshotSource,
	classifier Classifier,
	retriever Retriever,
	assembler Assembler,
	generator domain.Generator,
	logger *zap.Logger,
) *Service {
	return &Service{
		snapshots:  snapshots,
		classifier: classifier,
		retriever:  retriever,
		assembler:  assembler,
		generator:  generator,
		logger:     logger,
	}
}

// Ask answers one question. Retrieval and generation failures surface as
// degraded-answer conditions; an empty retrieval is a normal answer.
func (s *Service) Ask(ctx context.Context, question string) (Response, error) {
	resp, err := s.Search(ctx, question)
	if err != nil {
		return Response{}, err
	}

	answer, err := s.generator.Generate(ctx, resp.Payload, question)
	if err != nil {
		return Response{}, fmt.Errorf("generate answer: %w", err)
	}
	resp.Answer = answer

	s.logger.Info("question answered",
		zap.String("intent", string(resp.Intent.Kind)),
		zap.String("language", string(resp.Intent.Language)),
		zap.String("reason", string(resp.Result.Reason())),
		zap.Int("matches", len(resp.Result.Matches)),
		zap.Bool("truncated", resp.Payload.Truncated),
	)
	return resp, nil
}

// Search runs the pipeline without the generation step: classify, retrieve,
// assemble. Serves the raw-retrieval endpoint and the first half of Ask.
func (s *Service) Search(ctx context.Context, question string) (Response, error) {
	snap, err := s.snapshots.Load()
	if err != nil {
		return Response{}, fmt.Errorf("load snapshot: %w", err)
	}

	intent := s.classifier.Classify(question)
	metrics.QueriesTotal.WithLabelValues(string(intent.Kind), string(intent.Language)).Inc()

	result, err := s.retriever.Retrieve(ctx, intent, snap)
	if err != nil {
		return Response{}, fmt.Errorf("retrieve: %w", err)
	}
	if result.Empty() {
		metrics.RetrievalEmptyTotal.WithLabelValues(string(intent.Kind)).Inc()
	}

	return Response{
		Intent:  intent,
		Result:  result,
		Payload: s.assembler.Assemble(result, intent),
	}, nil
}
