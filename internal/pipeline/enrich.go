package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/apify"
)

// rawProfile matches the profile-scraper actor's output schema. This is the
// single place raw scraper records are mapped onto the canonical Profile;
// downstream stages never look at raw field names.
type rawProfile struct {
	LinkedinURL        string `json:"linkedinUrl"`
	ProfileURL         string `json:"profileUrl"`
	FullName           string `json:"fullName"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Headline           string `json:"headline"`
	JobTitle           string `json:"jobTitle"`
	JobDescription     string `json:"jobDescription"`
	CompanyName        string `json:"companyName"`
	CompanyDescription string `json:"companyDescription"`
	CompanyIndustry    string `json:"companyIndustry"`
	CompanySize        string `json:"companySize"`
	AddressCountryOnly string `json:"addressCountryOnly"`
	AddressWithCountry string `json:"addressWithCountry"`
	About              string `json:"about"`
	Email              string `json:"email"`
	ProfilePic         string `json:"profilePic"`
	Experiences        []struct {
		Title   string `json:"title"`
		Company string `json:"subtitle"`
	} `json:"experiences"`
}

// adaptProfile maps one raw scraper record onto the canonical Profile.
func adaptProfile(raw rawProfile) model.Profile {
	url := raw.LinkedinURL
	if url == "" {
		url = raw.ProfileURL
	}
	return model.Profile{
		URL:                model.NormalizeProfileURL(url),
		FirstName:          raw.FirstName,
		LastName:           raw.LastName,
		FullName:           raw.FullName,
		Headline:           raw.Headline,
		JobTitle:           raw.JobTitle,
		JobDescription:     raw.JobDescription,
		CompanyName:        raw.CompanyName,
		CompanyDescription: raw.CompanyDescription,
		CompanyIndustry:    raw.CompanyIndustry,
		CompanySize:        raw.CompanySize,
		Country:            raw.AddressCountryOnly,
		Location:           raw.AddressWithCountry,
		About:              raw.About,
		ExperienceCount:    len(raw.Experiences),
		HasPhoto:           raw.ProfilePic != "",
		Email:              raw.Email,
	}
}

// EnrichResult carries the scraped batch plus the counters used for cost
// reporting.
type EnrichResult struct {
	Profiles  []model.Profile
	FromCache int
	Scraped   int
}

// ScrapeProfiles returns full profiles for the given identifiers,
// transparently backed by the profile cache. Only uncached identifiers are
// sent to the scraper; new results are merged into the cache afterwards.
// A failed launch or fetch returns the cached subset rather than an error.
func (p *Pipeline) ScrapeProfiles(ctx context.Context, urls []string) (EnrichResult, error) {
	normalized := make([]string, 0, len(urls))
	for _, u := range urls {
		if n := model.NormalizeProfileURL(u); n != "" {
			normalized = append(normalized, n)
		}
	}

	cached, err := p.store.GetCachedProfiles(ctx, normalized)
	if err != nil {
		zap.L().Warn("pipeline: profile cache read failed", zap.Error(err))
		cached = map[string]model.Profile{}
	}

	var uncached []string
	for _, u := range normalized {
		if _, ok := cached[u]; !ok {
			uncached = append(uncached, u)
		}
	}

	result := EnrichResult{FromCache: len(cached)}
	for _, prof := range cached {
		result.Profiles = append(result.Profiles, prof)
	}
	if len(uncached) == 0 {
		zap.L().Info("pipeline: all profiles cached", zap.Int("count", len(cached)))
		return result, nil
	}

	zap.L().Info("pipeline: scraping profiles",
		zap.Int("uncached", len(uncached)),
		zap.Int("cached", len(cached)),
	)

	scraped, err := p.runProfileScraper(ctx, uncached)
	if err != nil {
		zap.L().Warn("pipeline: profile scrape failed, returning cached subset",
			zap.Error(err),
			zap.Int("cached", len(cached)),
		)
		return result, nil
	}
	result.Scraped = len(scraped)
	result.Profiles = append(result.Profiles, scraped...)

	if err := p.store.PutProfiles(ctx, scraped); err != nil {
		zap.L().Warn("pipeline: profile cache write failed", zap.Error(err))
	}
	return result, nil
}

// runProfileScraper launches the asynchronous scraper job and waits for its
// dataset.
func (p *Pipeline) runProfileScraper(ctx context.Context, urls []string) ([]model.Profile, error) {
	input := map[string]any{
		"profileUrls": urls,
	}
	run, err := p.apify.StartActor(ctx, p.cfg.Apify.ProfileScraperActor, input)
	if err != nil {
		return nil, err
	}

	poll := apify.PollConfig{
		InitialWait: time.Duration(p.cfg.Apify.InitialWaitSecs) * time.Second,
		Interval:    time.Duration(p.cfg.Apify.PollIntervalSecs) * time.Second,
		Timeout:     time.Duration(p.cfg.Apify.PollTimeoutSecs) * time.Second,
	}
	items, err := apify.WaitForRun(ctx, p.apify, run.ID, poll)
	if err != nil {
		return nil, err
	}

	profiles := make([]model.Profile, 0, len(items))
	for _, item := range items {
		var raw rawProfile
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		prof := adaptProfile(raw)
		if prof.URL == "" {
			continue
		}
		profiles = append(profiles, prof)
	}
	return profiles, nil
}

// MergeEngagementContext joins profiles against the engager records from
// collection, attaching reaction type, source post and decoded post time.
// Profiles with no matching engager are left untouched.
func MergeEngagementContext(profiles []model.Profile, engagers []model.Engager) []model.Profile {
	byURL := make(map[string]model.Engager, len(engagers))
	for _, e := range engagers {
		byURL[model.NormalizeProfileURL(e.ProfileURL)] = e
	}

	now := time.Now().UTC()
	out := make([]model.Profile, len(profiles))
	for i, prof := range profiles {
		out[i] = prof
		e, ok := byURL[prof.URL]
		if !ok {
			continue
		}
		ec := &model.EngagementContext{
			ReactionType: e.ReactionType,
			PostURL:      e.PostURL,
			ScrapedAt:    now,
		}
		if id := model.ExtractActivityID(e.PostURL); id != "" {
			ec.PostedAt = model.DecodeActivityTime(id)
		}
		out[i].Engagement = ec

		// collection headline fills gaps left by the scraper
		if out[i].Headline == "" {
			out[i].Headline = e.Headline
		}
		if out[i].FullName == "" {
			out[i].FullName = e.Name
		}
	}
	return out
}
