package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skillsenselab/refinekit/completion"
	"github.com/skillsenselab/refinekit/resilience"
)

func TestNewProviderDefaults(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.cfg.BaseURL != defaultBaseURL {
		t.Errorf("base url = %q, want %q", p.cfg.BaseURL, defaultBaseURL)
	}
	if p.cfg.Model != defaultModel {
		t.Errorf("model = %q, want %q", p.cfg.Model, defaultModel)
	}
	if p.cfg.Timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", p.cfg.Timeout, defaultTimeout)
	}
	if p.Name() != ProviderName {
		t.Errorf("name = %q, want %q", p.Name(), ProviderName)
	}
}

func TestNewProviderInvalidConfig(t *testing.T) {
	if _, err := NewProvider(Config{Temperature: 3.5}); err == nil {
		t.Error("expected validation error for temperature out of range")
	}
	if _, err := NewProvider(Config{BaseURL: "not a url"}); err == nil {
		t.Error("expected validation error for malformed base url")
	}
}

func TestComplete(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Model:           "llama3.1",
			Message:         chatMessage{Role: "assistant", Content: `{"sentences":[]}`},
			Done:            true,
			PromptEvalCount: 120,
			EvalCount:       30,
		})
	}))
	defer srv.Close()

	p, err := NewProvider(Config{
		BaseURL:     srv.URL,
		Model:       "llama3.1",
		Temperature: 0.1,
		MaxTokens:   2048,
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	resp, err := p.Complete(context.Background(), completion.Request{
		System: "you fix transcripts",
		Prompt: "[0] hello",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if resp.Content != `{"sentences":[]}` {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Model != "llama3.1" {
		t.Errorf("model = %q", resp.Model)
	}
	if resp.Usage.PromptTokens != 120 || resp.Usage.CompletionTokens != 30 || resp.Usage.TotalTokens != 150 {
		t.Errorf("usage = %+v", resp.Usage)
	}

	if gotReq.Stream {
		t.Error("stream should be false")
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
	if gotReq.Options == nil || gotReq.Options.Temperature != 0.1 || gotReq.Options.NumPredict != 2048 {
		t.Errorf("options = %+v", gotReq.Options)
	}
}

func TestCompleteNoSystemPrompt(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Content: "ok"}, Done: true})
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, err := p.Complete(context.Background(), completion.Request{Prompt: "hi"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	_, err = p.Complete(context.Background(), completion.Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error for HTTP 503")
	}
	var ce *completion.Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *completion.Error, got %T: %v", err, err)
	}
	if ce.Status != http.StatusServiceUnavailable || !ce.Retryable {
		t.Errorf("error = %+v, want retryable 503", ce)
	}
}

func TestCompleteBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	_, err = p.Complete(context.Background(), completion.Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected decode error")
	}
	if completion.IsRetryable(err) {
		t.Error("decode errors should not be retryable")
	}
}

func TestCompleteRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Content: "ok"}, Done: true})
	}))
	defer srv.Close()

	p, err := NewProvider(Config{
		BaseURL: srv.URL,
		Retry: &resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			Jitter:         0,
		},
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	resp, err := p.Complete(context.Background(), completion.Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("content = %q", resp.Content)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestCompleteDoesNotRetryTerminalErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	p, err := NewProvider(Config{
		BaseURL: srv.URL,
		Retry: &resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
		},
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	if _, err := p.Complete(context.Background(), completion.Request{Prompt: "hi"}); err == nil {
		t.Fatal("expected error for HTTP 400")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on 4xx)", got)
	}
}

func TestCompleteContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Complete(ctx, completion.Request{Prompt: "hi"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected probe path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))

	p, err := NewProvider(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if !p.IsAvailable(context.Background()) {
		t.Error("expected available")
	}

	srv.Close()
	if p.IsAvailable(context.Background()) {
		t.Error("expected unavailable after server shutdown")
	}
}

func TestFactory(t *testing.T) {
	factory := Factory()
	prov, err := factory(map[string]any{
		"base_url":    "http://localhost:11434",
		"model":       "qwen2.5",
		"temperature": 0.2,
		"max_tokens":  1024,
		"timeout":     "30s",
	})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	p, ok := prov.(*Provider)
	if !ok {
		t.Fatalf("factory returned %T", prov)
	}
	if p.cfg.Model != "qwen2.5" || p.cfg.MaxTokens != 1024 || p.cfg.Timeout != 30*time.Second {
		t.Errorf("config = %+v", p.cfg)
	}
}

func TestFactoryInvalidTimeout(t *testing.T) {
	if _, err := Factory()(map[string]any{"timeout": "soon"}); err == nil {
		t.Error("expected error for unparseable timeout")
	}
}
