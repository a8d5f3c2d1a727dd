package pipeline

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

const profileScraperActor = "dev_fusion~linkedin-profile-scraper"

func rawProfileJSON(t *testing.T, url, fullName, title, company string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"linkedinUrl":        url,
		"fullName":           fullName,
		"firstName":          "Test",
		"jobTitle":           title,
		"companyName":        company,
		"addressCountryOnly": "United States",
		"experiences":        []map[string]any{{"title": title, "subtitle": company}},
	})
	require.NoError(t, err)
	return raw
}

func TestAdaptProfile(t *testing.T) {
	var raw rawProfile
	require.NoError(t, json.Unmarshal(rawProfileJSON(t, "https://LinkedIn.com/in/Jane/", "Jane Doe", "CEO", "Acme"), &raw))

	prof := adaptProfile(raw)
	assert.Equal(t, "https://linkedin.com/in/jane", prof.URL)
	assert.Equal(t, "Jane Doe", prof.FullName)
	assert.Equal(t, "CEO", prof.JobTitle)
	assert.Equal(t, "United States", prof.Country)
	assert.Equal(t, 1, prof.ExperienceCount)
}

func TestScrapeProfilesAllCached(t *testing.T) {
	ctx := context.Background()
	apifyStub := &StubApifyClient{Items: map[string][]json.RawMessage{}}
	p, st := newTestPipeline(t, apifyStub, nil, nil)
	p.cfg.Apify.ProfileScraperActor = profileScraperActor

	require.NoError(t, st.PutProfiles(ctx, []model.Profile{
		{URL: "https://linkedin.com/in/jane", FullName: "Jane Doe"},
	}))

	result, err := p.ScrapeProfiles(ctx, []string{"https://LinkedIn.com/in/Jane/"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FromCache)
	assert.Zero(t, result.Scraped)
	require.Len(t, result.Profiles, 1)
	assert.Equal(t, "Jane Doe", result.Profiles[0].FullName)
}

func TestScrapeProfilesPartitionsCacheAndScrape(t *testing.T) {
	ctx := context.Background()
	apifyStub := &StubApifyClient{Items: map[string][]json.RawMessage{
		profileScraperActor: {rawProfileJSON(t, "https://linkedin.com/in/new", "New Person", "Founder", "Startup")},
	}}
	p, st := newTestPipeline(t, apifyStub, nil, nil)
	p.cfg.Apify.ProfileScraperActor = profileScraperActor
	p.cfg.Apify.PollTimeoutSecs = 5

	require.NoError(t, st.PutProfiles(ctx, []model.Profile{
		{URL: "https://linkedin.com/in/cached", FullName: "Cached Person"},
	}))

	result, err := p.ScrapeProfiles(ctx, []string{
		"https://linkedin.com/in/cached",
		"https://linkedin.com/in/new",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FromCache)
	assert.Equal(t, 1, result.Scraped)
	assert.Len(t, result.Profiles, 2)

	// newly scraped profile lands in the cache
	cached, err := st.GetCachedProfiles(ctx, []string{"https://linkedin.com/in/new"})
	require.NoError(t, err)
	assert.Contains(t, cached, "https://linkedin.com/in/new")
}

func TestMergeEngagementContext(t *testing.T) {
	activityID := strconv.FormatUint(uint64(1700000000000)<<22, 10)
	engagers := []model.Engager{
		{
			ProfileURL:   "https://linkedin.com/in/jane",
			ReactionType: "LIKE",
			PostURL:      "https://linkedin.com/posts/someone_topic-activity-" + activityID + "-abcd",
			Headline:     "CEO at Acme",
			Name:         "Jane Doe",
		},
	}
	profiles := []model.Profile{
		{URL: "https://linkedin.com/in/jane"},
		{URL: "https://linkedin.com/in/unrelated"},
	}

	merged := MergeEngagementContext(profiles, engagers)
	require.Len(t, merged, 2)

	ec := merged[0].Engagement
	require.NotNil(t, ec)
	assert.Equal(t, "LIKE", ec.ReactionType)
	require.NotNil(t, ec.PostedAt)
	assert.Equal(t, 2023, ec.PostedAt.Year())
	assert.False(t, ec.ScrapedAt.IsZero())
	assert.WithinDuration(t, time.Now(), ec.ScrapedAt, time.Minute)

	// headline from collection fills the gap
	assert.Equal(t, "CEO at Acme", merged[0].Headline)
	assert.Equal(t, "Jane Doe", merged[0].FullName)

	assert.Nil(t, merged[1].Engagement)
}

func TestCollectEngagers(t *testing.T) {
	const reactionsActor = "curious_coder~linkedin-post-reactions-scraper"
	raw, err := json.Marshal(map[string]any{
		"reactor": map[string]any{
			"profile_url": "https://LinkedIn.com/in/Jane/",
			"name":        "Jane Doe",
			"headline":    "CEO at Acme",
		},
		"reaction_type": "LIKE",
	})
	require.NoError(t, err)

	apifyStub := &StubApifyClient{Items: map[string][]json.RawMessage{
		reactionsActor: {raw},
	}}
	p, _ := newTestPipeline(t, apifyStub, nil, nil)
	p.cfg.Apify.PostReactionsActor = reactionsActor

	engagers, scraped, err := p.CollectEngagers(context.Background(), []string{"https://linkedin.com/posts/x-activity-1"})
	require.NoError(t, err)

	assert.Equal(t, 1, scraped)
	require.Len(t, engagers, 1)
	assert.Equal(t, "https://linkedin.com/in/jane", engagers[0].ProfileURL)
	// post URL falls back to the scraped post when the record has none
	assert.Equal(t, "https://linkedin.com/posts/x-activity-1", engagers[0].PostURL)
}
