package pipeline

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// rawEngager matches the post-reactions actor's output schema.
type rawEngager struct {
	Reactor struct {
		ProfileURL string `json:"profile_url"`
		Name       string `json:"name"`
		Headline   string `json:"headline"`
	} `json:"reactor"`
	ReactionType string `json:"reaction_type"`
	PostURL      string `json:"post_url"`
}

// CollectEngagers scrapes the reaction lists of the given posts and maps the
// raw records onto the canonical Engager shape. A post that fails to scrape
// is logged and skipped; the count of scraped posts is returned for cost
// tracking.
func (p *Pipeline) CollectEngagers(ctx context.Context, postURLs []string) ([]model.Engager, int, error) {
	var engagers []model.Engager
	scraped := 0
	for _, postURL := range postURLs {
		input := map[string]any{
			"post_urls": []string{postURL},
		}
		items, err := p.apify.RunActorSync(ctx, p.cfg.Apify.PostReactionsActor, input)
		if err != nil {
			zap.L().Warn("pipeline: post reactions scrape failed",
				zap.String("post", postURL),
				zap.Error(err),
			)
			continue
		}
		scraped++

		for _, item := range items {
			var raw rawEngager
			if err := json.Unmarshal(item, &raw); err != nil {
				continue
			}
			if raw.Reactor.ProfileURL == "" {
				continue
			}
			post := raw.PostURL
			if post == "" {
				post = postURL
			}
			engagers = append(engagers, model.Engager{
				ProfileURL:   model.NormalizeProfileURL(raw.Reactor.ProfileURL),
				Name:         raw.Reactor.Name,
				Headline:     raw.Reactor.Headline,
				ReactionType: raw.ReactionType,
				PostURL:      post,
			})
		}
	}

	if scraped == 0 && len(postURLs) > 0 {
		return nil, 0, eris.New("pipeline: all post reaction scrapes failed")
	}

	zap.L().Info("pipeline: engagers collected",
		zap.Int("posts", scraped),
		zap.Int("engagers", len(engagers)),
	)
	return engagers, scraped, nil
}

// AggregateProfileURLs collects the unique profile URLs from a batch of
// engagers, preserving first-seen order.
func AggregateProfileURLs(engagers []model.Engager) []string {
	seen := make(map[string]bool, len(engagers))
	var urls []string
	for _, e := range engagers {
		url := model.NormalizeProfileURL(e.ProfileURL)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		urls = append(urls, url)
	}
	return urls
}
