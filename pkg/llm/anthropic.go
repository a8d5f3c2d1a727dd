package llm

import (
	"context"
	"net/http"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// DefaultAnthropicModel is the model used when none is configured.
const DefaultAnthropicModel = "claude-haiku-4-5-20251001"

// anthropicClient implements Client using the official anthropic-sdk-go.
type anthropicClient struct {
	inner sdk.Client
	model string
}

// AnthropicOption configures the Anthropic client.
type AnthropicOption func(*anthropicConfig)

type anthropicConfig struct {
	model      string
	timeout    time.Duration
	sdkOptions []option.RequestOption
}

// WithAnthropicModel overrides the model name.
func WithAnthropicModel(model string) AnthropicOption {
	return func(c *anthropicConfig) {
		c.model = model
	}
}

// WithAnthropicBaseURL overrides the API endpoint.
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(c *anthropicConfig) {
		c.sdkOptions = append(c.sdkOptions, option.WithBaseURL(url))
	}
}

// WithAnthropicTimeout overrides the per-call HTTP timeout.
func WithAnthropicTimeout(d time.Duration) AnthropicOption {
	return func(c *anthropicConfig) {
		c.timeout = d
	}
}

// NewAnthropic creates a Client backed by the Anthropic Messages API.
func NewAnthropic(apiKey string, opts ...AnthropicOption) Client {
	cfg := &anthropicConfig{
		model:   DefaultAnthropicModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	// SDK retries would stretch a call well past the configured timeout;
	// callers handle failures with local fallbacks instead.
	sdkOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
		option.WithMaxRetries(0),
	}, cfg.sdkOptions...)
	return &anthropicClient{
		inner: sdk.NewClient(sdkOpts...),
		model: cfg.model,
	}
}

func (c *anthropicClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(req.Temperature)
	}

	msg, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "llm: anthropic completion")
	}

	var text string
	for _, block := range msg.Content {
		text += block.Text
	}

	return &CompletionResponse{
		Text:         text,
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}
