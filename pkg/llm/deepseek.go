package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"
)

// Default DeepSeek endpoint and model.
const (
	DefaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
	DefaultDeepSeekModel   = "deepseek-chat"
)

// DefaultTimeout bounds a single completion call. A hung connection must not
// stall a worker pool past this.
const DefaultTimeout = 60 * time.Second

// deepseekClient implements Client against DeepSeek's OpenAI-compatible API.
type deepseekClient struct {
	inner *openai.Client
	model string
}

// DeepSeekOption configures the DeepSeek client.
type DeepSeekOption func(*deepseekConfig)

type deepseekConfig struct {
	baseURL string
	model   string
	timeout time.Duration
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) DeepSeekOption {
	return func(c *deepseekConfig) {
		c.baseURL = url
	}
}

// WithModel overrides the model name.
func WithModel(model string) DeepSeekOption {
	return func(c *deepseekConfig) {
		c.model = model
	}
}

// WithTimeout overrides the per-call HTTP timeout.
func WithTimeout(d time.Duration) DeepSeekOption {
	return func(c *deepseekConfig) {
		c.timeout = d
	}
}

// NewDeepSeek creates a Client backed by DeepSeek chat completions.
func NewDeepSeek(apiKey string, opts ...DeepSeekOption) Client {
	cfg := &deepseekConfig{
		baseURL: DefaultDeepSeekBaseURL,
		model:   DefaultDeepSeekModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = cfg.baseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.timeout}
	return &deepseekClient{
		inner: openai.NewClientWithConfig(clientCfg),
		model: cfg.model,
	}
}

func (c *deepseekClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
	if req.JSONResponse {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.inner.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, eris.Wrap(err, "llm: deepseek completion")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("llm: deepseek returned no choices")
	}

	return &CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}
