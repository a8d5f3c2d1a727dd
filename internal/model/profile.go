package model

import (
	"strconv"
	"strings"
	"time"
)

// Profile is the canonical shape for a scraped LinkedIn person. Raw scraper
// records are mapped onto it at ingestion; downstream stages never look at
// provider-specific field names.
type Profile struct {
	URL                string             `json:"url"`
	FirstName          string             `json:"first_name,omitempty"`
	LastName           string             `json:"last_name,omitempty"`
	FullName           string             `json:"full_name,omitempty"`
	Headline           string             `json:"headline,omitempty"`
	JobTitle           string             `json:"job_title,omitempty"`
	JobDescription     string             `json:"job_description,omitempty"`
	CompanyName        string             `json:"company_name,omitempty"`
	CompanyDescription string             `json:"company_description,omitempty"`
	CompanyIndustry    string             `json:"company_industry,omitempty"`
	CompanySize        string             `json:"company_size,omitempty"`
	Country            string             `json:"country,omitempty"`
	Location           string             `json:"location,omitempty"`
	About              string             `json:"about,omitempty"`
	ExperienceCount    int                `json:"experience_count,omitempty"`
	HasPhoto           bool               `json:"has_photo,omitempty"`
	Email              string             `json:"email,omitempty"`
	Engagement         *EngagementContext `json:"engagement,omitempty"`
}

// Engager is one person who reacted to a monitored post, as returned by the
// reactions scraper before the full profile scrape.
type Engager struct {
	ProfileURL   string `json:"profile_url"`
	Name         string `json:"name,omitempty"`
	Headline     string `json:"headline,omitempty"`
	ReactionType string `json:"reaction_type,omitempty"`
	PostURL      string `json:"post_url,omitempty"`
}

// EngagementContext ties a profile to the event that surfaced it. Created per
// engager at collection time, merged into the Profile once scraped, never
// mutated afterward.
type EngagementContext struct {
	ReactionType string     `json:"reaction_type,omitempty"`
	PostURL      string     `json:"post_url,omitempty"`
	PostedAt     *time.Time `json:"posted_at,omitempty"`
	ScrapedAt    time.Time  `json:"scraped_at"`
}

// NormalizeProfileURL canonicalizes a LinkedIn profile URL so the same person
// always maps to the same cache and ledger key: lower-cased, query string
// stripped, trailing slash stripped. Idempotent.
func NormalizeProfileURL(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.Index(u, "?"); idx >= 0 {
		u = u[:idx]
	}
	return strings.TrimRight(u, "/")
}

// activityTimestampShift is the bit offset of the Unix-millisecond timestamp
// packed into a LinkedIn activity ID. Best-effort: unverified against any
// published format.
const activityTimestampShift = 22

// DecodeActivityTime extracts the post timestamp encoded in a numeric
// activity ID. Returns nil when the ID is not numeric or decodes to an
// implausible instant.
func DecodeActivityTime(activityID string) *time.Time {
	id, err := strconv.ParseUint(strings.TrimSpace(activityID), 10, 64)
	if err != nil {
		return nil
	}
	ms := int64(id >> activityTimestampShift)
	t := time.UnixMilli(ms).UTC()
	if t.Year() < 2005 || t.Year() > 2100 {
		return nil
	}
	return &t
}

// ExtractActivityID pulls the numeric activity ID out of a post URL such as
// ".../posts/foo-activity-7234567890123456789-ab12". Empty when absent.
func ExtractActivityID(postURL string) string {
	const marker = "activity-"
	idx := strings.LastIndex(postURL, marker)
	if idx < 0 {
		return ""
	}
	rest := postURL[idx+len(marker):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	return rest[:end]
}
