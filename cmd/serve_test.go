package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st := store.NewJSON(t.TempDir())
	require.NoError(t, st.Migrate(context.Background()))
	srv := httptest.NewServer(newRouter(st))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { _ = st.Close() })
	return srv, st
}

func TestServeHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestServeReplyWebhook(t *testing.T) {
	dir := t.TempDir()
	st := store.NewJSON(dir)
	require.NoError(t, st.Migrate(context.Background()))
	defer st.Close()
	srv := httptest.NewServer(newRouter(st))
	defer srv.Close()

	body := `{"leadLinkedInUrl":"https://www.linkedin.com/in/Jane-Doe/","campaignId":"c-9","message":"interested, tell me more"}`
	resp, err := http.Post(srv.URL+"/webhooks/heyreach", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := os.ReadFile(filepath.Join(dir, "replies.json"))
	require.NoError(t, err)
	var replies []model.ReplyEvent
	require.NoError(t, json.Unmarshal(raw, &replies))
	require.Len(t, replies, 1)
	assert.Equal(t, model.NormalizeProfileURL("https://www.linkedin.com/in/Jane-Doe/"), replies[0].ProfileURL)
	assert.Equal(t, "c-9", replies[0].CampaignID)
	assert.Equal(t, "interested, tell me more", replies[0].Message)
	assert.False(t, replies[0].ReceivedAt.IsZero())
}

func TestServeReplyWebhookNestedLead(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"lead":{"linkedinUrl":"https://linkedin.com/in/mike"},"message":"hi"}`
	resp, err := http.Post(srv.URL+"/webhooks/heyreach", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeReplyWebhookBadBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/webhooks/heyreach", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeReplyWebhookNoURL(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/webhooks/heyreach", "application/json", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeProspectLookup(t *testing.T) {
	srv, st := newTestServer(t)

	url := model.NormalizeProfileURL("https://www.linkedin.com/in/jane-doe/")
	require.NoError(t, st.RecordProcessed(context.Background(), map[string]model.ProcessedLead{
		url: {Name: "Jane Doe", AddedAt: time.Now().UTC(), Source: "manual", ListID: "42"},
	}))

	resp, err := http.Get(srv.URL + "/prospects?url=https://www.linkedin.com/in/Jane-Doe/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Jane Doe", body["name"])
	assert.Equal(t, "manual", body["source"])
	assert.Equal(t, "42", body["list_id"])
}

func TestServeProspectLookupNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/prospects?url=https://linkedin.com/in/stranger")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeProspectLookupMissingParam(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/prospects")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
