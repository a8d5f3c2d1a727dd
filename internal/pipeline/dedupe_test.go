package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestFilterUnprocessedPartitions(t *testing.T) {
	ctx := context.Background()
	p, st := newTestPipeline(t, nil, nil, nil)

	err := st.RecordProcessed(ctx, map[string]model.ProcessedLead{
		"https://linkedin.com/in/seen": {Name: "Seen Before", Source: "competitor", ListID: "42"},
	})
	require.NoError(t, err)

	unprocessed, duplicates, err := p.FilterUnprocessed(ctx, []string{
		"https://LinkedIn.com/in/Seen/",
		"https://linkedin.com/in/new",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, duplicates)
	require.Len(t, unprocessed, 1)
	assert.Equal(t, "https://linkedin.com/in/new", unprocessed[0])
}

func TestFilterUnprocessedIdempotent(t *testing.T) {
	ctx := context.Background()
	p, st := newTestPipeline(t, nil, nil, nil)

	err := st.RecordProcessed(ctx, map[string]model.ProcessedLead{
		"https://linkedin.com/in/seen": {Name: "Seen"},
	})
	require.NoError(t, err)

	urls := []string{"https://linkedin.com/in/seen", "https://linkedin.com/in/new"}

	first, dup1, err := p.FilterUnprocessed(ctx, urls)
	require.NoError(t, err)
	second, dup2, err := p.FilterUnprocessed(ctx, urls)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, dup1, dup2)
}

func TestRecordProcessedWritesLedger(t *testing.T) {
	ctx := context.Background()
	p, st := newTestPipeline(t, nil, nil, nil)

	leads := []model.Lead{
		{Profile: model.Profile{URL: "https://linkedin.com/in/jane", FullName: "Jane Doe"}},
	}
	require.NoError(t, p.RecordProcessed(ctx, leads, "competitor_pipeline", 42))

	record, err := st.GetProcessedLead(ctx, "https://linkedin.com/in/jane")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Jane Doe", record.Name)
	assert.Equal(t, "competitor_pipeline", record.Source)
	assert.Equal(t, "42", record.ListID)
	assert.False(t, record.AddedAt.IsZero())
}

func TestAggregateProfileURLs(t *testing.T) {
	engagers := []model.Engager{
		{ProfileURL: "https://linkedin.com/in/a"},
		{ProfileURL: "https://LinkedIn.com/in/A/"},
		{ProfileURL: "https://linkedin.com/in/b"},
		{ProfileURL: ""},
	}
	urls := AggregateProfileURLs(engagers)
	assert.Equal(t, []string{"https://linkedin.com/in/a", "https://linkedin.com/in/b"}, urls)
}
