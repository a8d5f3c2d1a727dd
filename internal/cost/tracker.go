package cost

import (
	"fmt"
	"strings"
)

// Tracker accumulates actual spend for one pipeline run. It is created per
// run and threaded through the pipeline explicitly; there is no process-wide
// tracker. Updates happen on the orchestrating goroutine after each stage's
// workers have joined, so no locking is needed.
type Tracker struct {
	calc *Calculator

	searchResults   int
	postsScraped    int
	profilesScraped int
	inputTokens     int
	outputTokens    int
	llmCalls        int

	savedScrapes int
	savedICP     int
}

// NewTracker creates a Tracker priced with the given rates.
func NewTracker(rates Rates) *Tracker {
	return &Tracker{calc: NewCalculator(rates)}
}

// AddSearchResults records n Google-search results fetched.
func (t *Tracker) AddSearchResults(n int) { t.searchResults += n }

// AddPostScrapes records n posts whose reactions were scraped.
func (t *Tracker) AddPostScrapes(n int) { t.postsScraped += n }

// AddProfileScrapes records n full profile scrapes paid for.
func (t *Tracker) AddProfileScrapes(n int) { t.profilesScraped += n }

// AddTokens records token usage for one LLM call.
func (t *Tracker) AddTokens(input, output int) {
	t.inputTokens += input
	t.outputTokens += output
	t.llmCalls++
}

// AddSavedScrapes records profile scrapes avoided by the cache, the
// pre-filter, or the duplicate suppressor.
func (t *Tracker) AddSavedScrapes(n int) { t.savedScrapes += n }

// AddSavedClassifications records ICP calls avoided by earlier filters.
func (t *Tracker) AddSavedClassifications(n int) { t.savedICP += n }

// Total returns the accumulated spend in USD.
func (t *Tracker) Total() float64 {
	return t.calc.GoogleSearch(t.searchResults) +
		t.calc.PostScrapes(t.postsScraped) +
		t.calc.ProfileScrape(t.profilesScraped) +
		t.calc.Tokens(t.inputTokens, t.outputTokens)
}

// Saved returns the estimated spend avoided by filtering before paying.
func (t *Tracker) Saved() float64 {
	return t.calc.ProfileScrape(t.savedScrapes) + t.calc.EstimateICP(t.savedICP)
}

// Summary renders a human-readable cost breakdown for the end-of-run report.
func (t *Tracker) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "search results: %d ($%.4f)\n", t.searchResults, t.calc.GoogleSearch(t.searchResults))
	fmt.Fprintf(&b, "posts scraped: %d ($%.4f)\n", t.postsScraped, t.calc.PostScrapes(t.postsScraped))
	fmt.Fprintf(&b, "profiles scraped: %d ($%.4f)\n", t.profilesScraped, t.calc.ProfileScrape(t.profilesScraped))
	fmt.Fprintf(&b, "llm calls: %d, tokens in/out: %d/%d ($%.4f)\n",
		t.llmCalls, t.inputTokens, t.outputTokens, t.calc.Tokens(t.inputTokens, t.outputTokens))
	fmt.Fprintf(&b, "total: $%.4f (est. $%.4f avoided by filters)", t.Total(), t.Saved())
	return b.String()
}
