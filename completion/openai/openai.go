// Package openai implements the completion.Provider interface against any
// OpenAI-compatible chat completions API (OpenAI, Groq, vLLM, LM Studio).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/skillsenselab/refinekit/completion"
	"github.com/skillsenselab/refinekit/provider"
	"github.com/skillsenselab/refinekit/resilience"
	"github.com/skillsenselab/refinekit/validation"
)

const (
	// ProviderName is the registered name for the OpenAI-compatible backend.
	ProviderName = "openai"

	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for an OpenAI-compatible backend. BaseURL is
// the server root; the /v1 API path is appended per request, so Groq-style
// deployments should include their prefix (e.g. https://api.groq.com/openai).
type Config struct {
	BaseURL     string        `json:"base_url" yaml:"base_url" validate:"omitempty,url"`
	APIKey      string        `json:"api_key" yaml:"api_key"`
	Model       string        `json:"model" yaml:"model"`
	Temperature float64       `json:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `json:"max_tokens" yaml:"max_tokens" validate:"gte=0"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	// Retry retries failed calls with backoff. Nil disables retries.
	Retry *resilience.RetryConfig `json:"retry,omitempty" yaml:"retry"`
	// RateLimit throttles outgoing calls. Nil disables throttling.
	RateLimit *resilience.RateLimiterConfig `json:"rate_limit,omitempty" yaml:"rate_limit"`
}

// Provider implements completion.Provider using the chat completions API.
type Provider struct {
	cfg      Config
	client   *http.Client
	limiter  *resilience.RateLimiter
	retryCfg *resilience.RetryConfig
}

// NewProvider creates an OpenAI-compatible completion provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if err := validation.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("openai config: %w", err)
	}

	p := &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RateLimit != nil {
		p.limiter = resilience.NewRateLimiter(*cfg.RateLimit)
	}
	if cfg.Retry != nil {
		rc := *cfg.Retry
		if rc.RetryIf == nil {
			rc.RetryIf = completion.IsRetryable
		}
		p.retryCfg = &rc
	}
	return p, nil
}

// Factory returns a provider.Factory that creates OpenAI providers from a
// generic config map. Unknown keys are ignored.
func Factory() provider.Factory[completion.Provider] {
	return func(cfg map[string]any) (completion.Provider, error) {
		oc := Config{}
		if v, ok := cfg["base_url"].(string); ok {
			oc.BaseURL = v
		}
		if v, ok := cfg["api_key"].(string); ok {
			oc.APIKey = v
		}
		if v, ok := cfg["model"].(string); ok {
			oc.Model = v
		}
		if v, ok := cfg["temperature"].(float64); ok {
			oc.Temperature = v
		}
		switch v := cfg["max_tokens"].(type) {
		case int:
			oc.MaxTokens = v
		case float64:
			oc.MaxTokens = int(v)
		}
		switch v := cfg["timeout"].(type) {
		case time.Duration:
			oc.Timeout = v
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("openai config: invalid timeout %q: %w", v, err)
			}
			oc.Timeout = d
		}
		return NewProvider(oc)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the API is reachable and the key is accepted.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/v1/models", http.NoBody)
	if err != nil {
		return false
	}
	p.setHeaders(req)
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Complete sends a chat completions request and returns the full response.
func (p *Provider) Complete(ctx context.Context, req completion.Request) (*completion.Response, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	chatReq := p.buildChatRequest(req)
	call := func() (*chatResponse, error) {
		return p.doRequest(ctx, chatReq)
	}

	var (
		resp *chatResponse
		err  error
	)
	if p.retryCfg != nil {
		resp, err = resilience.Retry(ctx, *p.retryCfg, call)
	} else {
		resp, err = call()
	}
	if err != nil {
		return nil, fmt.Errorf("openai complete: %w", err)
	}

	return &completion.Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: completion.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// --- internal chat completions API types ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

// buildChatRequest creates a chat completions request from a
// completion.Request. Request fields override config defaults when set.
func (p *Provider) buildChatRequest(req completion.Request) chatRequest {
	temp := p.cfg.Temperature
	if req.Temperature != 0 {
		temp = req.Temperature
	}
	maxTokens := p.cfg.MaxTokens
	if req.MaxTokens != 0 {
		maxTokens = req.MaxTokens
	}

	msgs := make([]chatMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.System})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.Prompt})

	return chatRequest{
		Model:       p.cfg.Model,
		Messages:    msgs,
		Temperature: temp,
		MaxTokens:   maxTokens,
	}
}

// setHeaders applies auth and tracing headers to an outgoing request.
// Every attempt carries a fresh request id so retries are distinguishable
// in backend logs.
func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}
}

// doRequest sends the chat request and decodes the response, classifying
// failures into completion errors.
func (p *Provider) doRequest(ctx context.Context, req chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	p.setHeaders(httpReq)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, completion.ClassifyTransportError(err)
	}
	defer httpResp.Body.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, completion.ClassifyTransportError(err)
	}
	if e := completion.ClassifyStatus(httpResp.StatusCode, string(respBody)); e != nil {
		return nil, e
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, completion.NewDecodeError(string(respBody), err)
	}
	if len(resp.Choices) == 0 {
		return nil, completion.NewDecodeError(string(respBody), errors.New("response contained no choices"))
	}
	return &resp, nil
}
