// Package ollama implements the completion.Provider interface against a
// local or remote Ollama server's chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skillsenselab/refinekit/completion"
	"github.com/skillsenselab/refinekit/provider"
	"github.com/skillsenselab/refinekit/resilience"
	"github.com/skillsenselab/refinekit/validation"
)

const (
	// ProviderName is the registered name for the Ollama backend.
	ProviderName = "ollama"

	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.1"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama completion backend.
type Config struct {
	BaseURL     string        `json:"base_url" yaml:"base_url" validate:"omitempty,url"`
	Model       string        `json:"model" yaml:"model"`
	Temperature float64       `json:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `json:"max_tokens" yaml:"max_tokens" validate:"gte=0"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	// Retry retries failed calls with backoff. Nil disables retries.
	Retry *resilience.RetryConfig `json:"retry,omitempty" yaml:"retry"`
	// RateLimit throttles outgoing calls. Nil disables throttling.
	RateLimit *resilience.RateLimiterConfig `json:"rate_limit,omitempty" yaml:"rate_limit"`
}

// Provider implements completion.Provider using Ollama's chat API.
type Provider struct {
	cfg      Config
	client   *http.Client
	limiter  *resilience.RateLimiter
	retryCfg *resilience.RetryConfig
}

// NewProvider creates an Ollama completion provider.
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
		return nil, fmt.Errorf("ollama config: %w", err)
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

// Factory returns a provider.Factory that creates Ollama providers from a
// generic config map. Unknown keys are ignored.
func Factory() provider.Factory[completion.Provider] {
	return func(cfg map[string]any) (completion.Provider, error) {
		oc := Config{}
		if v, ok := cfg["base_url"].(string); ok {
			oc.BaseURL = v
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
				return nil, fmt.Errorf("ollama config: invalid timeout %q: %w", v, err)
			}
			oc.Timeout = d
		}
		return NewProvider(oc)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Ollama server is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/api/tags", http.NoBody)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Complete sends a chat request and returns the full response.
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
		return nil, fmt.Errorf("ollama complete: %w", err)
	}

	return &completion.Response{
		Content: resp.Message.Content,
		Model:   resp.Model,
		Usage: completion.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}

// --- internal Ollama API types ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
}

// buildChatRequest creates an Ollama chat request from a completion.Request.
// Request fields override config defaults when set.
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

	out := chatRequest{
		Model:    p.cfg.Model,
		Messages: msgs,
		Stream:   false,
	}
	if temp != 0 || maxTokens != 0 {
		out.Options = &chatOptions{Temperature: temp, NumPredict: maxTokens}
	}
	return out
}

// doRequest sends the chat request and decodes the response, classifying
// failures into completion errors.
func (p *Provider) doRequest(ctx context.Context, req chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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
	return &resp, nil
}
