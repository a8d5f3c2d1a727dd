package cost

// Rates holds per-provider pricing configuration.
type Rates struct {
	Apify ApifyRates `yaml:"apify" mapstructure:"apify"`
	LLM   LLMRates   `yaml:"llm" mapstructure:"llm"`
}

// ApifyRates holds per-result actor pricing (USD per item).
type ApifyRates struct {
	GoogleSearchResult float64 `yaml:"google_search_result" mapstructure:"google_search_result"`
	PostScrape         float64 `yaml:"post_scrape" mapstructure:"post_scrape"`
	ProfileScrape      float64 `yaml:"profile_scrape" mapstructure:"profile_scrape"`
}

// LLMRates holds token pricing (USD per million tokens) plus average
// per-call token estimates used for pre-run cost projections.
type LLMRates struct {
	InputPerMTok       float64 `yaml:"input_per_mtok" mapstructure:"input_per_mtok"`
	OutputPerMTok      float64 `yaml:"output_per_mtok" mapstructure:"output_per_mtok"`
	AvgICPTokens       int     `yaml:"avg_icp_tokens" mapstructure:"avg_icp_tokens"`
	AvgPersonalization int     `yaml:"avg_personalization_tokens" mapstructure:"avg_personalization_tokens"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// GoogleSearch returns the cost of fetching n search results.
func (c *Calculator) GoogleSearch(results int) float64 {
	return float64(results) * c.rates.Apify.GoogleSearchResult
}

// PostScrapes returns the cost of scraping the reactions of n posts. The
// reactions actor bills per post, not per reaction.
func (c *Calculator) PostScrapes(posts int) float64 {
	return float64(posts) * c.rates.Apify.PostScrape
}

// ProfileScrape returns the cost of scraping n full profiles.
func (c *Calculator) ProfileScrape(profiles int) float64 {
	return float64(profiles) * c.rates.Apify.ProfileScrape
}

// Tokens returns the cost of an LLM call with the given token counts.
func (c *Calculator) Tokens(input, output int) float64 {
	return (float64(input)/1e6)*c.rates.LLM.InputPerMTok +
		(float64(output)/1e6)*c.rates.LLM.OutputPerMTok
}

// EstimateICP projects the cost of classifying n profiles using the average
// per-call token estimate, split evenly between input and output.
func (c *Calculator) EstimateICP(profiles int) float64 {
	per := c.rates.LLM.AvgICPTokens / 2
	return float64(profiles) * c.Tokens(per, per)
}

// EstimatePersonalization projects the cost of generating n messages.
func (c *Calculator) EstimatePersonalization(leads int) float64 {
	per := c.rates.LLM.AvgPersonalization / 2
	return float64(leads) * c.Tokens(per, per)
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Apify: ApifyRates{
			GoogleSearchResult: 0.004,
			PostScrape:         0.008,
			ProfileScrape:      0.025,
		},
		LLM: LLMRates{
			InputPerMTok:       0.14,
			OutputPerMTok:      0.28,
			AvgICPTokens:       400,
			AvgPersonalization: 800,
		},
	}
}
