package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/store"
)

func TestInitStoreJSON(t *testing.T) {
	c := &config.Config{}
	c.Store.Driver = "json"
	c.Store.DataDir = t.TempDir()

	st, err := initStore(context.Background(), c)
	require.NoError(t, err)
	defer st.Close()
	assert.IsType(t, &store.JSONStore{}, st)
}

func TestInitStoreSQLite(t *testing.T) {
	c := &config.Config{}
	c.Store.Driver = "sqlite"
	c.Store.SQLitePath = filepath.Join(t.TempDir(), "outreach.db")

	st, err := initStore(context.Background(), c)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(context.Background()))
}

func TestInitStoreUnknownDriver(t *testing.T) {
	c := &config.Config{}
	c.Store.Driver = "oracle"

	_, err := initStore(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestNewLLMClientNoKey(t *testing.T) {
	c := &config.Config{}
	c.LLM.Provider = "deepseek"
	assert.Nil(t, newLLMClient(c))

	c.LLM.Provider = "anthropic"
	assert.Nil(t, newLLMClient(c))
}

func TestNewLLMClientConfigured(t *testing.T) {
	c := &config.Config{}
	c.LLM.Provider = "deepseek"
	c.LLM.Key = "sk-test"
	c.LLM.BaseURL = "https://api.deepseek.com/v1"
	c.LLM.Model = "deepseek-chat"
	c.LLM.TimeoutSecs = 30
	assert.NotNil(t, newLLMClient(c))

	c2 := &config.Config{}
	c2.LLM.Provider = "anthropic"
	c2.LLM.AnthropicKey = "sk-ant-test"
	c2.LLM.AnthropicModel = "claude-haiku-4-5-20251001"
	assert.NotNil(t, newLLMClient(c2))
}
