package pipeline

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// FilterByLocation keeps profiles whose country matches the allow-list,
// case-insensitive. A missing country drops the profile: this filter fails
// closed, unlike the ICP checks.
func FilterByLocation(profiles []model.Profile, allowedCountries []string) []model.Profile {
	allowed := make(map[string]bool, len(allowedCountries))
	for _, c := range allowedCountries {
		allowed[strings.ToLower(strings.TrimSpace(c))] = true
	}

	var kept []model.Profile
	for _, prof := range profiles {
		country := strings.ToLower(strings.TrimSpace(prof.Country))
		if country == "" {
			continue
		}
		if allowed[country] {
			kept = append(kept, prof)
		}
	}
	return kept
}
