// Package pipeline implements the lead qualification funnel: engagement
// collection, headline pre-filtering, cached profile enrichment, duplicate
// suppression, location and completeness filtering, ICP qualification,
// message personalization, and the validate/correct pass.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/cost"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/pkg/apify"
	"github.com/sells-group/outreach-cli/pkg/heyreach"
	"github.com/sells-group/outreach-cli/pkg/llm"
)

// Pipeline orchestrates the batch funnel from post URLs to uploaded leads.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	apify    apify.Client
	llm      llm.Client
	heyreach heyreach.Client
	tracker  *cost.Tracker
	policy   QualificationPolicy
}

// New creates a Pipeline with all dependencies. The llm client may be nil;
// affected stages degrade to their local fallbacks.
func New(
	cfg *config.Config,
	st store.Store,
	apifyClient apify.Client,
	llmClient llm.Client,
	hrClient heyreach.Client,
	tracker *cost.Tracker,
) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		apify:    apifyClient,
		llm:      llmClient,
		heyreach: hrClient,
		tracker:  tracker,
		policy:   DefaultPolicy(),
	}
}

// RunOptions are the per-run flags threaded down from the CLI.
type RunOptions struct {
	PostURLs       []string
	ListID         int
	Source         string
	ICPCriteria    string
	Countries      []string
	DryRun         bool
	SkipICP        bool
	SkipValidation bool
}

// RunResult is the outcome of one pipeline run.
type RunResult struct {
	Stats    model.FunnelStats
	Leads    []model.Lead
	Rejected []model.Lead
	Duration time.Duration
}

// Run executes the full funnel in strict stage order. Each stage consumes
// the previous stage's complete output; no profile advances ahead of its
// batch.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	start := time.Now()
	log := zap.L().With(zap.Int("posts", len(opts.PostURLs)), zap.Int("list_id", opts.ListID))
	log.Info("pipeline: starting run")

	result := &RunResult{}

	// Stage 1: engagement collection.
	engagers, postsScraped, err := p.CollectEngagers(ctx, opts.PostURLs)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: collect engagers")
	}
	p.tracker.AddPostScrapes(postsScraped)
	result.Stats.Engagers = len(engagers)

	// Stage 2: headline pre-filter.
	pre := Prefilter(engagers)
	result.Stats.PrefilterKept = len(pre.Kept)
	result.Stats.PrefilterDrop = pre.Rejected
	result.Stats.NonEnglish = pre.NonEnglish
	p.tracker.AddSavedScrapes(pre.Rejected)
	log.Info("pipeline: pre-filter complete",
		zap.Int("kept", len(pre.Kept)),
		zap.Int("rejected", pre.Rejected),
		zap.Int("non_english", pre.NonEnglish),
	)

	// Stage 3: duplicate suppression, before any scrape is paid for.
	urls := AggregateProfileURLs(pre.Kept)
	unprocessed, duplicates, err := p.FilterUnprocessed(ctx, urls)
	if err != nil {
		return nil, err
	}
	result.Stats.Duplicates = duplicates
	p.tracker.AddSavedScrapes(duplicates)
	if len(unprocessed) == 0 {
		log.Info("pipeline: no new profiles to process")
		result.Duration = time.Since(start)
		return result, nil
	}

	// Stage 4: cached profile enrichment.
	enriched, err := p.ScrapeProfiles(ctx, unprocessed)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: scrape profiles")
	}
	p.tracker.AddProfileScrapes(enriched.Scraped)
	p.tracker.AddSavedScrapes(enriched.FromCache)
	result.Stats.Scraped = enriched.Scraped
	result.Stats.FromCache = enriched.FromCache
	profiles := MergeEngagementContext(enriched.Profiles, pre.Kept)

	// Stage 5: location filter.
	countries := opts.Countries
	if len(countries) == 0 {
		countries = p.cfg.Pipeline.AllowedCountries
	}
	profiles = FilterByLocation(profiles, countries)
	result.Stats.LocationKept = len(profiles)

	// Stage 6: completeness filter.
	profiles, droppedSparse := FilterComplete(profiles)
	result.Stats.CompleteKept = len(profiles)
	p.tracker.AddSavedClassifications(droppedSparse)
	log.Info("pipeline: filters complete",
		zap.Int("location_kept", result.Stats.LocationKept),
		zap.Int("complete_kept", result.Stats.CompleteKept),
	)

	// Stage 7: ICP qualification.
	criteria := opts.ICPCriteria
	if criteria == "" {
		criteria = p.cfg.Pipeline.ICPCriteria
	}
	classified := p.QualifyBatch(ctx, profiles, criteria, opts.SkipICP)

	var qualified []model.Lead
	for _, lead := range classified {
		if lead.ICP.Match {
			qualified = append(qualified, lead)
		} else {
			result.Rejected = append(result.Rejected, lead)
		}
	}
	result.Stats.Qualified = len(qualified)
	result.Stats.Rejected = len(result.Rejected)
	log.Info("pipeline: qualification complete",
		zap.Int("qualified", len(qualified)),
		zap.Int("rejected", len(result.Rejected)),
	)
	if len(qualified) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	// Stage 8: personalization.
	qualified = p.PersonalizeBatch(ctx, qualified)

	// Stage 9: validation and correction.
	if !opts.SkipValidation {
		var stats ValidationStats
		qualified, stats = p.ValidateAndCorrect(ctx, qualified)
		result.Stats.MessagesPassed = stats.Passed
		result.Stats.MessagesFlagged = stats.Flagged
		result.Stats.MessagesErrored = stats.Errored
		result.Stats.Corrected = stats.Corrected
	}
	result.Leads = qualified

	// Stage 10: upload and ledger write.
	if opts.DryRun {
		log.Info("pipeline: dry run, skipping upload", zap.Int("leads", len(qualified)))
		result.Duration = time.Since(start)
		return result, nil
	}

	uploaded, err := p.Upload(ctx, qualified, opts.ListID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: upload leads")
	}
	result.Stats.Uploaded = uploaded.Accepted
	result.Stats.UploadFailed = uploaded.Failed

	if err := p.RecordProcessed(ctx, qualified, opts.Source, opts.ListID); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	log.Info("pipeline: run complete",
		zap.Int("uploaded", uploaded.Accepted),
		zap.Int("failed", uploaded.Failed),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// Upload formats leads for the outreach platform and pushes them to the
// destination list. The personalized message travels as a custom field the
// campaign sequence references.
func (p *Pipeline) Upload(ctx context.Context, leads []model.Lead, listID int) (*heyreach.AddResult, error) {
	formatted := make([]heyreach.Lead, 0, len(leads))
	for _, lead := range leads {
		formatted = append(formatted, FormatLead(lead))
	}
	return p.heyreach.AddLeadsToList(ctx, listID, formatted)
}

// FormatLead maps one pipeline lead onto the outreach platform's schema.
func FormatLead(lead model.Lead) heyreach.Lead {
	out := heyreach.Lead{
		FirstName:    lead.Profile.FirstName,
		LastName:     lead.Profile.LastName,
		ProfileURL:   lead.Profile.URL,
		CompanyName:  lead.Profile.CompanyName,
		Position:     lead.Profile.JobTitle,
		EmailAddress: lead.Profile.Email,
		Location:     lead.Profile.Location,
		Summary:      lead.Profile.About,
	}
	if lead.Message != nil {
		out.CustomUserFields = []heyreach.CustomUserField{
			{Name: "personalized_message", Value: lead.Message.Text},
		}
	}
	return out
}
