package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func newTestJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	s := NewJSON(t.TempDir())
	require.NoError(t, s.Migrate(context.TODO()))
	return s
}

func TestJSONProfileCacheRoundTrip(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.TODO()

	profiles := []model.Profile{
		{URL: "https://LinkedIn.com/in/Jane/", FullName: "Jane Doe", JobTitle: "CEO", CompanyName: "Acme"},
		{URL: "https://linkedin.com/in/bob?x=1", FullName: "Bob Roe", JobTitle: "Founder"},
	}
	require.NoError(t, s.PutProfiles(ctx, profiles))

	got, err := s.GetCachedProfiles(ctx, []string{
		"https://linkedin.com/in/jane",
		"https://LinkedIn.com/in/Bob/",
		"https://linkedin.com/in/missing",
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	jane := got["https://linkedin.com/in/jane"]
	assert.Equal(t, "Jane Doe", jane.FullName)
	assert.Equal(t, "https://linkedin.com/in/jane", jane.URL)
	assert.Equal(t, "Bob Roe", got["https://linkedin.com/in/bob"].FullName)
}

func TestJSONProfileCacheAdditive(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.TODO()

	require.NoError(t, s.PutProfiles(ctx, []model.Profile{{URL: "https://linkedin.com/in/a", FullName: "A"}}))
	require.NoError(t, s.PutProfiles(ctx, []model.Profile{{URL: "https://linkedin.com/in/b", FullName: "B"}}))

	got, err := s.GetCachedProfiles(ctx, []string{"https://linkedin.com/in/a", "https://linkedin.com/in/b"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestJSONProcessedLedger(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.TODO()

	now := time.Now().UTC().Truncate(time.Second)
	entries := map[string]model.ProcessedLead{
		"https://LinkedIn.com/in/Jane/": {Name: "Jane Doe", AddedAt: now, Source: "keyword:growth", ListID: "401"},
	}
	require.NoError(t, s.RecordProcessed(ctx, entries))

	ledger, err := s.GetProcessed(ctx)
	require.NoError(t, err)
	entry, ok := ledger["https://linkedin.com/in/jane"]
	require.True(t, ok, "ledger key must be normalized")
	assert.Equal(t, "Jane Doe", entry.Name)
	assert.Equal(t, "401", entry.ListID)

	single, err := s.GetProcessedLead(ctx, "https://linkedin.com/in/jane?utm=1")
	require.NoError(t, err)
	require.NotNil(t, single)
	assert.Equal(t, "keyword:growth", single.Source)

	missing, err := s.GetProcessedLead(ctx, "https://linkedin.com/in/nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestJSONRecordProcessedLastWriteWins(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.TODO()

	url := "https://linkedin.com/in/jane"
	require.NoError(t, s.RecordProcessed(ctx, map[string]model.ProcessedLead{
		url: {Name: "Jane", Source: "run-1", ListID: "1", AddedAt: time.Now().UTC()},
	}))
	require.NoError(t, s.RecordProcessed(ctx, map[string]model.ProcessedLead{
		url: {Name: "Jane", Source: "run-2", ListID: "2", AddedAt: time.Now().UTC()},
	}))

	ledger, err := s.GetProcessed(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "run-2", ledger[url].Source)
}

func TestJSONRecordReply(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.TODO()

	require.NoError(t, s.RecordReply(ctx, model.ReplyEvent{
		ProfileURL: "https://LinkedIn.com/in/Jane/",
		CampaignID: "camp-1",
		Message:    "sounds interesting",
		ReceivedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.RecordReply(ctx, model.ReplyEvent{
		ProfileURL: "https://linkedin.com/in/bob",
		ReceivedAt: time.Now().UTC(),
	}))

	data, err := os.ReadFile(filepath.Join(s.dir, repliesFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://linkedin.com/in/jane")
	assert.Contains(t, string(data), "sounds interesting")
}

func TestJSONMissingFilesAreEmpty(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.TODO()

	ledger, err := s.GetProcessed(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger)

	cached, err := s.GetCachedProfiles(ctx, []string{"https://linkedin.com/in/a"})
	require.NoError(t, err)
	assert.Empty(t, cached)
}
