package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicComplete(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"content": [{"type": "text", "text": "hello back"}],
			"usage": {"input_tokens": 80, "output_tokens": 12}
		}`))
	}))
	defer server.Close()

	client := NewAnthropic("test-key",
		WithAnthropicBaseURL(server.URL),
		WithAnthropicModel("claude-haiku-4-5-20251001"),
	)
	resp, err := client.Complete(context.Background(), CompletionRequest{
		System: "You are a classifier.",
		Prompt: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello back", resp.Text)
	assert.Equal(t, 80, resp.InputTokens)
	assert.Equal(t, 12, resp.OutputTokens)

	assert.Equal(t, "claude-haiku-4-5-20251001", gotBody["model"])
	system, ok := gotBody["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	assert.Equal(t, "You are a classifier.", system[0].(map[string]any)["text"])
}

func TestAnthropicCompleteTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewAnthropic("test-key",
		WithAnthropicBaseURL(server.URL),
		WithAnthropicTimeout(50*time.Millisecond),
	)

	start := time.Now()
	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, err.Error(), "anthropic completion")
}
