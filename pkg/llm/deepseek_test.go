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

func TestDeepSeekComplete(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "{\"match\": true}"}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 40}
		}`))
	}))
	defer server.Close()

	client := NewDeepSeek("test-key", WithBaseURL(server.URL))
	resp, err := client.Complete(context.Background(), CompletionRequest{
		System:       "You are a classifier.",
		Prompt:       "Classify this lead.",
		MaxTokens:    256,
		Temperature:  0.2,
		JSONResponse: true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"match": true}`, resp.Text)
	assert.Equal(t, 120, resp.InputTokens)
	assert.Equal(t, 40, resp.OutputTokens)

	assert.Equal(t, "deepseek-chat", gotBody["model"])
	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "You are a classifier.", first["content"])

	format, ok := gotBody["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
}

func TestDeepSeekCompleteNoSystem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		messages := body["messages"].([]any)
		require.Len(t, messages, 1)
		assert.Equal(t, "user", messages[0].(map[string]any)["role"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}], "usage": {}}`))
	}))
	defer server.Close()

	client := NewDeepSeek("test-key", WithBaseURL(server.URL))
	resp, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
}

func TestDeepSeekCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [], "usage": {}}`))
	}))
	defer server.Close()

	client := NewDeepSeek("test-key", WithBaseURL(server.URL))
	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestDeepSeekCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewDeepSeek("test-key", WithBaseURL(server.URL))
	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deepseek completion")
}

func TestDeepSeekCompleteTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewDeepSeek("test-key", WithBaseURL(server.URL), WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, err.Error(), "deepseek completion")
}

func TestDeepSeekOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "deepseek-reasoner", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}], "usage": {}}`))
	}))
	defer server.Close()

	client := NewDeepSeek("test-key", WithBaseURL(server.URL), WithModel("deepseek-reasoner"))
	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	require.NoError(t, err)
}
