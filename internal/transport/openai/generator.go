package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/metrics"
)

const systemPrompt = `You are a helpful assistant answering questions about a voter registry dataset from a union parishad in Bangladesh. You will be given retrieved voter records (or an aggregate count) as context, followed by the user's question.

Rules:
- Answer ONLY from the provided context. If the context says no records were found, say so; never invent voters or numbers.
- Answer in the language tagged in the context: Bengali (বাংলা) for "bn", English for "en".
- Keep answers concise and factual. For counts, state the number plainly. For lists, enumerate the names.
- If the context is marked truncated, mention that the list is partial.`

// Generator produces the final answer text via chat completion.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	provider    string
	timeout     time.Duration
	retry       RetryConfig
	logger      *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string  // defaults to gpt-4o-mini
	Temperature float32 // defaults to 0.3
	Provider    string
	Timeout     time.Duration
	Retry       RetryConfig
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible generation provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.3
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: temperature,
		provider:    provider,
		timeout:     timeout,
		retry:       cfg.Retry.withDefaults(),
		logger:      cfg.Logger,
	}
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, payload domain.ContextPayload, question string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: renderUserMessage(payload, question)},
		},
	}

	start := time.Now()

	var resp openai.ChatCompletionResponse
	err := retryWithBackoff(ctx, g.retry, g.logger, "generation", func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		var callErr error
		resp, callErr = g.client.CreateChatCompletion(callCtx, req)
		return callErr
	})

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", parseAPIError("generation", err, domain.ErrGenerationUnavailable)
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationUnavailable)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func renderUserMessage(payload domain.ContextPayload, question string) string {
	truncated := ""
	if payload.Truncated {
		truncated = "\n[truncated: true]"
	}
	return fmt.Sprintf("[language: %s]\n[intent: %s]%s\n\nContext:\n%s\n\nQuestion: %s",
		payload.Language, payload.Intent, truncated, payload.Text, question)
}
