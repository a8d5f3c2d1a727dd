package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/model"
)

// legalSuffixes are stripped from company names before the shortening rule
// is applied.
var legalSuffixes = []string{
	", Inc.", ", Inc", ", LLC", ", LTD", ", Ltd",
	" Inc.", " Inc", " LLC", " LTD", " Ltd",
	", Corp", " Corp", " Corporation",
	" PLC", " plc", " Limited",
}

// ShortenCompanyName strips legal suffixes and collapses names of three or
// more words to their initials ("Immersion Data Solutions, LTD" -> "IDS").
// One- and two-word names pass through unchanged.
func ShortenCompanyName(company string) string {
	if company == "" {
		return ""
	}

	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(company, suffix) {
			company = strings.TrimSuffix(company, suffix)
			break
		}
	}
	company = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(company), ","))

	words := strings.Fields(company)
	if len(words) >= 3 {
		var b strings.Builder
		for _, w := range words {
			r := []rune(w)[0]
			if unicode.IsLetter(r) {
				b.WriteRune(unicode.ToUpper(r))
			}
		}
		if b.Len() >= 2 {
			return b.String()
		}
	}
	return company
}

// ExtractCity takes the substring before the first comma of a full location
// string ("San Francisco, California, United States" -> "San Francisco").
func ExtractCity(location string) string {
	if location == "" {
		return ""
	}
	city, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(city)
}

// templateInputs is the structured input assembled for a generation call.
type templateInputs struct {
	FirstName          string
	Company            string
	Title              string
	Headline           string
	CompanyDescription string
	City               string
}

func buildTemplateInputs(prof model.Profile) templateInputs {
	firstName := prof.FirstName
	if firstName == "" {
		if fields := strings.Fields(prof.FullName); len(fields) > 0 {
			firstName = fields[0]
		} else {
			firstName = "there"
		}
	}

	desc := prof.CompanyDescription
	if desc == "" {
		desc = prof.About
	}
	desc = truncateRunes(desc, 200)

	return templateInputs{
		FirstName:          firstName,
		Company:            ShortenCompanyName(prof.CompanyName),
		Title:              prof.JobTitle,
		Headline:           prof.Headline,
		CompanyDescription: desc,
		City:               ExtractCity(prof.Location),
	}
}

// MockMessage is the deterministic fallback when no generation capability is
// available. It fills the five-part template with fixed service/method text.
func MockMessage(prof model.Profile) string {
	in := buildTemplateInputs(prof)
	company := in.Company
	if company == "" {
		company = "Your company"
	}
	return fmt.Sprintf(`Hey %s

%s looks interesting

You guys do consulting right? Do that w LinkedIn + email? Or what

Outbound is a tough nut to crack.
Really comes down to precise targeting + personalisation to book clients at a high level.

See you're in %s. Just been to Fort Lauderdale in the US - and I mean the airport lol Have so many connections now that I need to visit for real. I'm in Glasgow, Scotland`,
		in.FirstName, company, in.City)
}

// Personalize generates the five-line DM for one lead. Any generation
// failure degrades to the deterministic mock template.
func (p *Pipeline) Personalize(ctx context.Context, prof model.Profile) (message string, mock bool, usage tokenUsage) {
	if p.llm == nil {
		return MockMessage(prof), true, tokenUsage{}
	}

	in := buildTemplateInputs(prof)
	prompt := fmt.Sprintf(generateUserPrompt,
		in.FirstName, in.Company, in.Title,
		orNA(in.Headline), orNA(in.CompanyDescription), in.City)

	resp, err := p.llm.Complete(ctx, completionRequest(generateSystemPrompt, prompt, 400, 0.7, false))
	if err != nil {
		zap.L().Warn("pipeline: personalization call failed, using mock",
			zap.String("profile", prof.URL),
			zap.Error(err),
		)
		return MockMessage(prof), true, tokenUsage{}
	}

	text := strings.TrimSpace(resp.Text)
	if strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) && len(text) > 1 {
		text = text[1 : len(text)-1]
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, "```", ""))
	if text == "" {
		return MockMessage(prof), true, tokenUsage{input: resp.InputTokens, output: resp.OutputTokens}
	}
	return text, false, tokenUsage{input: resp.InputTokens, output: resp.OutputTokens}
}

// PersonalizeBatch generates messages for all qualified leads in parallel.
func (p *Pipeline) PersonalizeBatch(ctx context.Context, leads []model.Lead) []model.Lead {
	out := make([]model.Lead, len(leads))
	usages := make([]tokenUsage, len(leads))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Pipeline.MaxWorkers)
	for i, lead := range leads {
		g.Go(func() error {
			text, mock, usage := p.Personalize(gCtx, lead.Profile)
			lead.Message = &model.PersonalizedMessage{Text: text, Mock: mock}
			out[i] = lead
			usages[i] = usage
			return nil
		})
	}
	_ = g.Wait()

	for _, u := range usages {
		p.tracker.AddTokens(u.input, u.output)
	}
	return out
}
