package model

import "time"

// Confidence describes how an ICP verdict was reached.
type Confidence string

const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceSkipped Confidence = "skipped"
	ConfidenceLocal   Confidence = "local"
	ConfidenceError   Confidence = "error"
)

// ICPResult is the classification outcome for one profile. Produced once per
// profile per run; verdicts are never cached across runs.
type ICPResult struct {
	Match      bool       `json:"match"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason,omitempty"`
}

// ValidationFlag is the three-way outcome of message-accuracy judging, plus a
// distinct ERROR state meaning the judge could not run at all.
type ValidationFlag string

const (
	FlagPass   ValidationFlag = "PASS"
	FlagReview ValidationFlag = "REVIEW"
	FlagFail   ValidationFlag = "FAIL"
	FlagError  ValidationFlag = "ERROR"
)

// Validation thresholds on the average sub-score.
const (
	PassThreshold   = 4.0
	ReviewThreshold = 2.5
)

// ValidationResult holds the judged accuracy scores for one generated message.
type ValidationResult struct {
	ServiceScore    int            `json:"service_score"`
	MethodScore     int            `json:"method_score"`
	AuthorityScore  int            `json:"authority_score"`
	AvgScore        float64        `json:"avg_score"`
	Flag            ValidationFlag `json:"flag"`
	InferredService string         `json:"inferred_service,omitempty"`
	ActualService   string         `json:"actual_service,omitempty"`
	Reason          string         `json:"reason,omitempty"`
}

// FlagForScore derives the PASS/REVIEW/FAIL flag from an average score.
func FlagForScore(avg float64) ValidationFlag {
	switch {
	case avg >= PassThreshold:
		return FlagPass
	case avg >= ReviewThreshold:
		return FlagReview
	default:
		return FlagFail
	}
}

// PersonalizedMessage is the generated outreach text for one lead, with the
// provenance accumulated by the validate/correct pass.
type PersonalizedMessage struct {
	Text            string            `json:"text"`
	Original        string            `json:"original,omitempty"`
	Mock            bool              `json:"mock,omitempty"`
	Validation      *ValidationResult `json:"validation,omitempty"`
	FinalValidation *ValidationResult `json:"final_validation,omitempty"`
	Corrected       bool              `json:"corrected,omitempty"`
}

// Lead is a profile that survived qualification, carrying its verdict and
// generated message through the rest of the pipeline.
type Lead struct {
	Profile Profile              `json:"profile"`
	ICP     ICPResult            `json:"icp"`
	Message *PersonalizedMessage `json:"message,omitempty"`
}

// ProcessedLead is one entry in the persistent processed-leads ledger, keyed
// by normalized profile URL. Written on successful upload, never updated or
// deleted by the pipeline.
type ProcessedLead struct {
	Name    string    `json:"name"`
	AddedAt time.Time `json:"added_at"`
	Source  string    `json:"source"`
	ListID  string    `json:"list_id"`
}

// ReplyEvent records an inbound reply forwarded by the outreach platform's
// webhook.
type ReplyEvent struct {
	ProfileURL string    `json:"profile_url"`
	CampaignID string    `json:"campaign_id,omitempty"`
	Message    string    `json:"message,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// FunnelStats counts how many candidates each stage kept and dropped, for the
// end-of-run report.
type FunnelStats struct {
	Engagers        int `json:"engagers"`
	PrefilterKept   int `json:"prefilter_kept"`
	PrefilterDrop   int `json:"prefilter_dropped"`
	NonEnglish      int `json:"non_english"`
	Duplicates      int `json:"duplicates"`
	Scraped         int `json:"scraped"`
	FromCache       int `json:"from_cache"`
	LocationKept    int `json:"location_kept"`
	CompleteKept    int `json:"complete_kept"`
	Qualified       int `json:"qualified"`
	Rejected        int `json:"rejected"`
	MessagesPassed  int `json:"messages_passed"`
	MessagesFlagged int `json:"messages_flagged"`
	MessagesErrored int `json:"messages_errored"`
	Corrected       int `json:"corrected"`
	Uploaded        int `json:"uploaded"`
	UploadFailed    int `json:"upload_failed"`
}
