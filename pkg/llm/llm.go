// Package llm provides the text-completion capability behind ICP
// classification, message generation, and message judging. Two providers are
// supported: DeepSeek (OpenAI-compatible API) and Anthropic.
package llm

import "context"

// Client is the completion capability the pipeline depends on.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is one prompt for the model.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	// JSONResponse asks the provider to constrain output to a JSON object,
	// where the provider supports it.
	JSONResponse bool
}

// CompletionResponse carries the model's text plus token accounting.
type CompletionResponse struct {
	Text         string
	InputTokens  int
	OutputTokens int
}
