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

// maxCorrectionAttempts bounds the validate -> correct -> re-validate cycle.
// A message is never regenerated twice; a lead still flagged after one
// correction pass is surfaced as flagged, not retried.
const maxCorrectionAttempts = 1

// judgeResponse matches the validator's JSON contract.
type judgeResponse struct {
	ServiceScore    int     `json:"service_score"`
	MethodScore     int     `json:"method_score"`
	AuthorityScore  int     `json:"authority_score"`
	AvgScore        float64 `json:"avg_score"`
	InferredService string  `json:"inferred_service"`
	ActualService   string  `json:"actual_service"`
	Flag            string  `json:"flag"`
	Reason          string  `json:"reason"`
}

// Validate judges one generated message against the lead's source data. A
// call or parse failure returns flag ERROR: "could not judge", distinct from
// "judged as bad", and never triggers correction.
func (p *Pipeline) Validate(ctx context.Context, prof model.Profile, message string) (*model.ValidationResult, tokenUsage) {
	if p.llm == nil {
		return &model.ValidationResult{
			Flag:   model.FlagError,
			Reason: "no validation capability configured",
		}, tokenUsage{}
	}

	prompt := fmt.Sprintf(validateUserPrompt,
		orNA(prof.FullName), orNA(prof.Headline), orNA(prof.JobTitle),
		orNA(prof.JobDescription), orNA(prof.CompanyName),
		orNA(prof.CompanyDescription), orNA(prof.CompanyIndustry),
		orNA(prof.About), message)

	resp, err := p.llm.Complete(ctx, completionRequest("", prompt, 500, 0.1, true))
	if err != nil {
		zap.L().Warn("pipeline: judge call failed",
			zap.String("profile", prof.URL),
			zap.Error(err),
		)
		return &model.ValidationResult{Flag: model.FlagError, Reason: err.Error()}, tokenUsage{}
	}
	usage := tokenUsage{input: resp.InputTokens, output: resp.OutputTokens}

	var parsed judgeResponse
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text)), &parsed); err != nil {
		zap.L().Warn("pipeline: judge returned malformed JSON",
			zap.String("profile", prof.URL),
			zap.Error(err),
		)
		return &model.ValidationResult{Flag: model.FlagError, Reason: "malformed judge response"}, usage
	}

	avg := parsed.AvgScore
	if avg == 0 {
		avg = float64(parsed.ServiceScore+parsed.MethodScore+parsed.AuthorityScore) / 3.0
	}
	// thresholds are authoritative over whatever flag the judge emitted
	flag := model.FlagForScore(avg)

	return &model.ValidationResult{
		ServiceScore:    parsed.ServiceScore,
		MethodScore:     parsed.MethodScore,
		AuthorityScore:  parsed.AuthorityScore,
		AvgScore:        avg,
		Flag:            flag,
		InferredService: parsed.InferredService,
		ActualService:   parsed.ActualService,
		Reason:          parsed.Reason,
	}, usage
}

// Correct requests one regeneration of a flagged message, embedding the
// judge's inferred-vs-actual service mismatch and reason. Returns the
// original text unchanged when the call fails.
func (p *Pipeline) Correct(ctx context.Context, prof model.Profile, message string, validation *model.ValidationResult) (string, tokenUsage) {
	in := buildTemplateInputs(prof)
	prompt := fmt.Sprintf(correctionUserPrompt,
		message,
		orNA(validation.InferredService), orNA(validation.ActualService),
		orNA(validation.Reason),
		in.FirstName, in.Company, in.Title,
		orNA(in.Headline), orNA(in.CompanyDescription), in.City)

	resp, err := p.llm.Complete(ctx, completionRequest(generateSystemPrompt, prompt, 400, 0.7, false))
	if err != nil {
		zap.L().Warn("pipeline: correction call failed",
			zap.String("profile", prof.URL),
			zap.Error(err),
		)
		return message, tokenUsage{}
	}
	usage := tokenUsage{input: resp.InputTokens, output: resp.OutputTokens}

	text := strings.TrimSpace(strings.ReplaceAll(resp.Text, "```", ""))
	if text == "" {
		return message, usage
	}
	return text, usage
}

// ValidationStats summarizes a validate-and-correct pass.
type ValidationStats struct {
	Passed    int
	Flagged   int
	Errored   int
	Corrected int
}

// ValidateAndCorrect runs the two-pass state machine over a batch:
// validate all messages in parallel, then for each REVIEW or FAIL lead
// preserve the original, regenerate once, and re-validate once. The final
// validation is recorded regardless of outcome. ERROR leads are counted
// separately and never corrected.
func (p *Pipeline) ValidateAndCorrect(ctx context.Context, leads []model.Lead) ([]model.Lead, ValidationStats) {
	out := make([]model.Lead, len(leads))
	usages := make([]tokenUsage, len(leads))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Pipeline.MaxWorkers)
	for i, lead := range leads {
		g.Go(func() error {
			if lead.Message == nil {
				out[i] = lead
				return nil
			}
			validation, usage := p.Validate(gCtx, lead.Profile, lead.Message.Text)
			lead.Message.Validation = validation
			out[i] = lead
			usages[i] = usage
			return nil
		})
	}
	_ = g.Wait()
	for _, u := range usages {
		p.tracker.AddTokens(u.input, u.output)
	}

	var stats ValidationStats
	var flaggedIdx []int
	for i, lead := range out {
		if lead.Message == nil || lead.Message.Validation == nil {
			continue
		}
		switch lead.Message.Validation.Flag {
		case model.FlagPass:
			stats.Passed++
		case model.FlagError:
			stats.Errored++
		default:
			stats.Flagged++
			flaggedIdx = append(flaggedIdx, i)
		}
	}
	if len(flaggedIdx) == 0 {
		return out, stats
	}

	zap.L().Info("pipeline: correcting flagged messages", zap.Int("flagged", len(flaggedIdx)))

	correctionUsages := make([]tokenUsage, len(flaggedIdx))
	g, gCtx = errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Pipeline.MaxWorkers)
	for slot, i := range flaggedIdx {
		g.Go(func() error {
			lead := out[i]
			var total tokenUsage
			for attempt := 0; attempt < maxCorrectionAttempts; attempt++ {
				original := lead.Message.Text
				corrected, usage := p.Correct(gCtx, lead.Profile, original, lead.Message.Validation)
				total.input += usage.input
				total.output += usage.output
				if corrected == original {
					break
				}

				final, usage := p.Validate(gCtx, lead.Profile, corrected)
				total.input += usage.input
				total.output += usage.output

				lead.Message.Original = original
				lead.Message.Text = corrected
				lead.Message.FinalValidation = final
				lead.Message.Corrected = true
			}
			out[i] = lead
			correctionUsages[slot] = total
			return nil
		})
	}
	_ = g.Wait()
	for _, u := range correctionUsages {
		p.tracker.AddTokens(u.input, u.output)
	}

	for _, i := range flaggedIdx {
		if out[i].Message.Corrected {
			stats.Corrected++
		}
	}
	return out, stats
}
