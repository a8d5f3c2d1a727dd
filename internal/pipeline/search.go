package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FoundPost is one LinkedIn post surfaced by the keyword search.
type FoundPost struct {
	URL           string
	Title         string
	Description   string
	ReactionCount int
}

// searchResult matches the google-search actor's organic-result schema.
type searchResult struct {
	URL             string `json:"url"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	FollowersAmount string `json:"followersAmount"`
}

var reactionCountRe = regexp.MustCompile(`(?i)([\d,]+)\+?\s*reactions?`)

// BuildSearchQuery builds the Google query for recent LinkedIn posts
// matching a keyword.
func BuildSearchQuery(keyword string, daysBack int) string {
	after := time.Now().AddDate(0, 0, -daysBack).Format("2006-01-02")
	return fmt.Sprintf(`site:linkedin.com/posts "%s" after:%s`, keyword, after)
}

// ExtractReactionCount parses a count out of strings like "1,234+ reactions".
// Returns 0 when no reaction data is present.
func ExtractReactionCount(s string) int {
	m := reactionCountRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// FilterPostsByReactions keeps posts with at least minReactions. Search
// results often carry no reaction data at all; in that case every LinkedIn
// post URL is kept rather than dropping the whole batch.
func FilterPostsByReactions(posts []FoundPost, minReactions int) []FoundPost {
	var withData, withoutData []FoundPost
	sawData := false
	for _, p := range posts {
		if !strings.Contains(p.URL, "linkedin.com/posts") {
			continue
		}
		if p.ReactionCount > 0 {
			sawData = true
			if p.ReactionCount >= minReactions {
				withData = append(withData, p)
			}
		} else {
			withoutData = append(withoutData, p)
		}
	}
	if !sawData {
		return withoutData
	}
	return withData
}

// SearchPosts runs the Google-search actor for a keyword and returns the
// LinkedIn posts that clear the reaction threshold. The number of raw search
// results is returned for cost tracking.
func (p *Pipeline) SearchPosts(ctx context.Context, keyword string, daysBack, minReactions int) ([]FoundPost, int, error) {
	query := BuildSearchQuery(keyword, daysBack)
	zap.L().Info("pipeline: searching for posts",
		zap.String("keyword", keyword),
		zap.String("query", query),
	)

	input := map[string]any{
		"queries":          query,
		"resultsPerPage":   100,
		"maxPagesPerQuery": 1,
	}
	items, err := p.apify.RunActorSync(ctx, p.cfg.Apify.GoogleSearchActor, input)
	if err != nil {
		return nil, 0, eris.Wrap(err, "pipeline: google search")
	}

	var posts []FoundPost
	var total int
	for _, item := range items {
		var page struct {
			OrganicResults []searchResult `json:"organicResults"`
		}
		if err := json.Unmarshal(item, &page); err != nil {
			continue
		}
		total += len(page.OrganicResults)
		for _, r := range page.OrganicResults {
			reactionSrc := r.FollowersAmount
			if reactionSrc == "" {
				reactionSrc = r.Description
			}
			posts = append(posts, FoundPost{
				URL:           r.URL,
				Title:         r.Title,
				Description:   r.Description,
				ReactionCount: ExtractReactionCount(reactionSrc),
			})
		}
	}

	p.tracker.AddSearchResults(total)
	filtered := FilterPostsByReactions(posts, minReactions)
	zap.L().Info("pipeline: post search complete",
		zap.Int("results", total),
		zap.Int("kept", len(filtered)),
	)
	return filtered, total, nil
}
