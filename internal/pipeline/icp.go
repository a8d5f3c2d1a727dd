package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Local rule lists for the fallback qualifier.
var (
	qualifiedTitles = []string{
		"ceo", "founder", "co-founder", "cofounder",
		"managing director", "owner", "partner",
		"president", "vp", "vice president",
		"cto", "cfo", "coo", "cmo", "chief", "director",
	}
	rejectedTitles = []string{
		"intern", "student", "junior", "associate",
		"assistant", "trainee", "apprentice",
		"driver", "technician", "cashier",
	}
	rejectedIndustries = []string{
		"banking", "financial services", "insurance", "retail",
	}
	qualifiedIndustries = []string{
		"software", "saas", "technology", "tech",
		"agency", "marketing", "consulting",
		"coaching", "professional services",
	}
	rejectedCompanies = []string{
		"santander", "getnet", "jpmorgan", "wells fargo",
		"bank of america", "citi", "hsbc",
	}
)

// checkAuthority judges seniority from the job title, falling back to the
// headline when no title is present.
func checkAuthority(prof model.Profile, policy FilterPolicy) (bool, string) {
	title := strings.ToLower(prof.JobTitle)
	if title == "" {
		title = strings.ToLower(prof.Headline)
	}

	for _, rejected := range rejectedTitles {
		if strings.Contains(title, rejected) {
			return false, fmt.Sprintf("rejected title: %s", rejected)
		}
	}
	for _, qualified := range qualifiedTitles {
		if strings.Contains(title, qualified) {
			return true, fmt.Sprintf("qualified title: %s", qualified)
		}
	}
	if policy == LenientDefaultPass {
		return true, "benefit of doubt: title not clearly rejected"
	}
	return false, "no authority keyword in title"
}

// checkIndustry judges company fit. Named banks are a hard rejection
// regardless of the person's title.
func checkIndustry(prof model.Profile, policy FilterPolicy) (bool, string) {
	industry := strings.ToLower(prof.CompanyIndustry)
	company := strings.ToLower(prof.CompanyName)

	for _, rejected := range rejectedCompanies {
		if strings.Contains(company, rejected) {
			return false, fmt.Sprintf("hard rejection: company %s", rejected)
		}
	}
	for _, rejected := range rejectedIndustries {
		if strings.Contains(industry, rejected) {
			return false, fmt.Sprintf("rejected industry: %s", rejected)
		}
	}
	for _, qualified := range qualifiedIndustries {
		if strings.Contains(industry, qualified) {
			return true, fmt.Sprintf("qualified industry: %s", qualified)
		}
	}
	if policy == LenientDefaultPass {
		return true, "benefit of doubt: industry not clearly rejected"
	}
	return false, "no whitelisted industry"
}

// QualifyLocal runs the rule-based qualifier. Both the authority and the
// industry check must pass; the first failing check's reason is surfaced.
func QualifyLocal(prof model.Profile, policy QualificationPolicy) model.ICPResult {
	authorityOK, authorityReason := checkAuthority(prof, policy.Authority)
	industryOK, industryReason := checkIndustry(prof, policy.Industry)

	result := model.ICPResult{
		Match:      authorityOK && industryOK,
		Confidence: model.ConfidenceLocal,
	}
	switch {
	case !authorityOK:
		result.Reason = authorityReason
	case !industryOK:
		result.Reason = industryReason
	default:
		result.Reason = authorityReason + "; " + industryReason
	}
	return result
}

// profileSummary assembles the lead description sent to the classifier and
// the judge.
func profileSummary(prof model.Profile) string {
	desc := prof.CompanyDescription
	if desc == "" {
		desc = prof.About
	}
	desc = truncateRunes(desc, 300)
	return fmt.Sprintf(`Lead: %s
Title: %s
Headline: %s
Company: %s
Company Description: %s
Location: %s
Industry: %s`,
		orNA(prof.FullName), orNA(prof.JobTitle), orNA(prof.Headline),
		orNA(prof.CompanyName), orNA(desc), orNA(prof.Location),
		orNA(prof.CompanyIndustry))
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// icpResponse matches the classifier's JSON contract.
type icpResponse struct {
	Match      bool   `json:"match"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`
}

// tokenUsage carries per-call token counts back to the orchestrating
// goroutine; the cost tracker is only updated after join points.
type tokenUsage struct {
	input  int
	output int
}

// Qualify classifies one profile against the ICP. The LLM path is primary;
// any call or parse failure falls back to the local rules with confidence
// "error" so reporting can tell heuristic verdicts from judged ones.
func (p *Pipeline) Qualify(ctx context.Context, prof model.Profile, criteria string) (model.ICPResult, tokenUsage) {
	if p.llm == nil {
		result := QualifyLocal(prof, p.policy)
		result.Confidence = model.ConfidenceLocal
		return result, tokenUsage{}
	}

	summary := profileSummary(prof)
	var system, prompt string
	if criteria == "" {
		system = icpSystemPrompt
		prompt = fmt.Sprintf(icpUserPrompt, summary)
	} else {
		system = icpCriteriaSystemPrompt
		prompt = fmt.Sprintf(icpCriteriaUserPrompt, criteria, summary)
	}

	resp, err := p.llm.Complete(ctx, completionRequest(system, prompt, 150, 0.3, true))
	if err != nil {
		zap.L().Warn("pipeline: icp classifier call failed",
			zap.String("profile", prof.URL),
			zap.Error(err),
		)
		result := QualifyLocal(prof, p.policy)
		result.Confidence = model.ConfidenceError
		return result, tokenUsage{}
	}
	usage := tokenUsage{input: resp.InputTokens, output: resp.OutputTokens}

	var parsed icpResponse
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text)), &parsed); err != nil {
		zap.L().Warn("pipeline: icp classifier returned malformed JSON",
			zap.String("profile", prof.URL),
			zap.Error(err),
		)
		result := QualifyLocal(prof, p.policy)
		result.Confidence = model.ConfidenceError
		return result, usage
	}

	return model.ICPResult{
		Match:      parsed.Match,
		Confidence: model.Confidence(parsed.Confidence),
		Reason:     parsed.Reason,
	}, usage
}

// QualifyBatch classifies profiles in parallel with a bounded worker pool.
// Results are re-keyed by profile, never by slice position. When skip is
// set, every profile qualifies with confidence "skipped".
func (p *Pipeline) QualifyBatch(ctx context.Context, profiles []model.Profile, criteria string, skip bool) []model.Lead {
	leads := make([]model.Lead, len(profiles))
	if skip {
		for i, prof := range profiles {
			leads[i] = model.Lead{
				Profile: prof,
				ICP: model.ICPResult{
					Match:      true,
					Confidence: model.ConfidenceSkipped,
					Reason:     "ICP check skipped",
				},
			}
		}
		return leads
	}

	usages := make([]tokenUsage, len(profiles))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Pipeline.MaxWorkers)
	for i, prof := range profiles {
		g.Go(func() error {
			result, usage := p.Qualify(gCtx, prof, criteria)
			leads[i] = model.Lead{Profile: prof, ICP: result}
			usages[i] = usage
			return nil
		})
	}
	_ = g.Wait()

	for _, u := range usages {
		p.tracker.AddTokens(u.input, u.output)
	}
	return leads
}
