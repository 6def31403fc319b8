package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/deshdata/voterquery/internal/domain"
)

const completionResponse = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"model": "gpt-4o-mini",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "১ নং ওয়ার্ডে ৪২ জন ভোটার আছেন।"}, "finish_reason": "stop"}]
}`

func newTestGenerator(url string) *Generator {
	return NewGenerator(&GeneratorConfig{
		APIKey:  "test-key",
		BaseURL: url + "/v1",
		Timeout: time.Second,
		Retry:   fastRetry(3),
		Logger:  zap.NewNop(),
	})
}

func TestGenerate_Success(t *testing.T) {
	var captured struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionResponse))
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL)
	payload := domain.ContextPayload{
		Language: domain.LangBengali,
		Intent:   domain.IntentAggregateCount,
		Text:     "মোট সংখ্যা (Total Count): 42\nশর্ত (Filter): ward 1",
	}
	answer, err := g.Generate(context.Background(), payload, "১ নং ওয়ার্ডে কতজন ভোটার আছে?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(answer, "৪২") {
		t.Errorf("answer = %q", answer)
	}

	if captured.Model != "gpt-4o-mini" {
		t.Errorf("model = %s, want gpt-4o-mini", captured.Model)
	}
	if captured.Temperature < 0.29 || captured.Temperature > 0.31 {
		t.Errorf("temperature = %f, want 0.3", captured.Temperature)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("first message role = %s", captured.Messages[0].Role)
	}
	user := captured.Messages[1].Content
	for _, want := range []string{"[language: bn]", "Total Count", "কতজন ভোটার"} {
		if !strings.Contains(user, want) {
			t.Errorf("user message missing %q:\n%s", want, user)
		}
	}
}

func TestGenerate_TruncationSurfacedToModel(t *testing.T) {
	payload := domain.ContextPayload{
		Language:  domain.LangEnglish,
		Intent:    domain.IntentAggregateList,
		Text:      "...",
		Truncated: true,
	}
	msg := renderUserMessage(payload, "list farmers")
	if !strings.Contains(msg, "[truncated: true]") {
		t.Errorf("message missing truncation marker:\n%s", msg)
	}
}

func TestGenerate_OutageAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL)
	_, err := g.Generate(context.Background(), domain.ContextPayload{}, "q")
	if !errors.Is(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("err = %v, want ErrGenerationUnavailable", err)
	}
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-1", "object": "chat.completion", "choices": []}`))
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL)
	_, err := g.Generate(context.Background(), domain.ContextPayload{}, "q")
	if !errors.Is(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("err = %v, want ErrGenerationUnavailable", err)
	}
}
