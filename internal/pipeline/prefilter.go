package pipeline

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/outreach-cli/internal/model"
)

// maxNonASCIIFraction is the share of characters above U+007F beyond which a
// headline is treated as non-English.
const maxNonASCIIFraction = 0.15

// headlineBlacklist drops engagers whose headline signals a role outside the
// buying audience before the profile scrape is paid for.
var headlineBlacklist = []string{
	"intern",
	"student",
	"trainee",
	"apprentice",
	"cashier",
	"driver",
	"technician",
	"mechanic",
	"nurse",
	"teacher",
	"professor",
	"looking for",
	"open to work",
	"seeking opportunities",
	"retired",
	"unemployed",
}

// nonEnglishRoleTokens are common business-role words in Portuguese, Spanish,
// French, German, Italian and Dutch. Any one of them marks the headline
// non-English.
var nonEnglishRoleTokens = []string{
	"diretor", "gerente", "empresa", "vendas",
	"director de", "gerente de", "empresario", "ventas",
	"directeur", "responsable", "entreprise", "chargé",
	"geschäftsführer", "vertrieb", "unternehmer", "leiter",
	"direttore", "responsabile", "azienda", "vendite",
	"directeur van", "bedrijf", "verkoop", "eigenaar",
}

// authorityKeywords are informational at this stage: counted for reporting,
// never a filter criterion. The full ICP pass judges authority later.
var authorityKeywords = []string{
	"ceo", "founder", "co-founder", "cofounder", "owner",
	"president", "partner", "principal", "chief",
	"vp", "vice president", "director", "managing director", "head of",
}

// PrefilterResult carries the kept engagers and the counters used for the
// cost-savings report.
type PrefilterResult struct {
	Kept          []model.Engager
	Rejected      int
	NonEnglish    int
	AuthoritySeen int
}

// Prefilter drops engagers whose public headline disqualifies them before
// scraping. An empty headline is always kept.
func Prefilter(engagers []model.Engager) PrefilterResult {
	var result PrefilterResult
	for _, e := range engagers {
		headline := norm.NFKC.String(strings.TrimSpace(e.Headline))
		if headline == "" {
			result.Kept = append(result.Kept, e)
			continue
		}

		if !looksEnglish(headline) {
			result.NonEnglish++
			result.Rejected++
			continue
		}

		lower := strings.ToLower(headline)
		if containsAny(lower, headlineBlacklist) {
			result.Rejected++
			continue
		}

		if containsAny(lower, authorityKeywords) {
			result.AuthoritySeen++
		}
		result.Kept = append(result.Kept, e)
	}
	return result
}

// looksEnglish applies the local language heuristic: fraction of non-ASCII
// characters, presence of CJK/Cyrillic/Arabic script, and known non-English
// role tokens.
func looksEnglish(headline string) bool {
	var total, nonASCII int
	for _, r := range headline {
		total++
		if r > unicode.MaxASCII {
			nonASCII++
		}
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul, unicode.Cyrillic, unicode.Arabic) {
			return false
		}
	}
	if total > 0 && float64(nonASCII)/float64(total) > maxNonASCIIFraction {
		return false
	}

	lower := strings.ToLower(headline)
	return !containsAny(lower, nonEnglishRoleTokens)
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
