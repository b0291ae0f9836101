package completion

// Request is the universal input for completion backends.
type Request struct {
	// System is the system prompt establishing task and output contract.
	System string `json:"system,omitempty" yaml:"system"`
	// Prompt is the user-turn content.
	Prompt string `json:"prompt" yaml:"prompt"`
	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature"`
	// MaxTokens limits the response length. 0 means backend default.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens"`
}

// Usage reports token consumption for a single call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the universal output from completion backends.
type Response struct {
	// Content is the generated text.
	Content string `json:"content"`
	// Model is the model that produced the response.
	Model string `json:"model"`
	// Usage reports token consumption.
	Usage Usage `json:"usage"`
}
