package pipeline

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// placeholderHeadlines are treated as no headline at all.
var placeholderHeadlines = map[string]bool{
	"":    true,
	"-":   true,
	"--":  true,
	"n/a": true,
	"na":  true,
}

// CompletenessResult explains why a profile was or was not judged complete.
type CompletenessResult struct {
	Complete      bool
	Reason        string
	MissingFields []string
}

// IsComplete reports whether a profile carries enough data to judge. A
// profile qualifies on (job title AND company name) or on (real headline AND
// at least one experience entry). Sparse profiles are excluded before the
// ICP classifier sees them; its benefit-of-doubt rule would otherwise pass
// empty records.
func IsComplete(prof model.Profile) CompletenessResult {
	hasTitle := strings.TrimSpace(prof.JobTitle) != ""
	hasCompany := strings.TrimSpace(prof.CompanyName) != ""
	if hasTitle && hasCompany {
		return CompletenessResult{Complete: true, Reason: "has job title and company"}
	}

	headline := strings.ToLower(strings.TrimSpace(prof.Headline))
	hasHeadline := !placeholderHeadlines[headline]
	if hasHeadline && prof.ExperienceCount > 0 {
		return CompletenessResult{Complete: true, Reason: "has headline and experience"}
	}

	var missing []string
	if !hasTitle {
		missing = append(missing, "job_title")
	}
	if !hasCompany {
		missing = append(missing, "company_name")
	}
	if !hasHeadline {
		missing = append(missing, "headline")
	}
	if prof.ExperienceCount == 0 {
		missing = append(missing, "experience")
	}
	return CompletenessResult{
		Complete:      false,
		Reason:        "profile too sparse to judge",
		MissingFields: missing,
	}
}

// FilterComplete drops profiles that fail the completeness check.
func FilterComplete(profiles []model.Profile) (kept []model.Profile, dropped int) {
	for _, prof := range profiles {
		if IsComplete(prof).Complete {
			kept = append(kept, prof)
		} else {
			dropped++
		}
	}
	return kept, dropped
}
