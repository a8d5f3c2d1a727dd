package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/sells-group/outreach-cli/pkg/apify"
	"github.com/sells-group/outreach-cli/pkg/heyreach"
	"github.com/sells-group/outreach-cli/pkg/llm"
)

// Compile-time interface checks.
var (
	_ apify.Client    = (*StubApifyClient)(nil)
	_ llm.Client      = (*StubLLMClient)(nil)
	_ heyreach.Client = (*StubHeyReachClient)(nil)
)

// --- Apify stub ---

// StubApifyClient implements apify.Client with canned dataset items, keyed
// by actor ID. Used for dry runs and tests.
type StubApifyClient struct {
	// Items returned per actor ID. RunActorSync and GetDatasetItems both
	// consult this map.
	Items map[string][]json.RawMessage
	// lastActor remembers which actor StartActor launched so the dataset
	// fetch can resolve its items.
	lastActor string
}

// RunActorSync implements apify.Client.
func (s *StubApifyClient) RunActorSync(_ context.Context, actorID string, _ any) ([]json.RawMessage, error) {
	return s.Items[actorID], nil
}

// StartActor implements apify.Client.
func (s *StubApifyClient) StartActor(_ context.Context, actorID string, _ any) (*apify.Run, error) {
	s.lastActor = actorID
	return &apify.Run{
		ID:               "stub-run-001",
		ActID:            actorID,
		Status:           apify.RunStatusSucceeded,
		DefaultDatasetID: "stub-dataset-001",
	}, nil
}

// GetRun implements apify.Client.
func (s *StubApifyClient) GetRun(_ context.Context, runID string) (*apify.Run, error) {
	return &apify.Run{
		ID:               runID,
		ActID:            s.lastActor,
		Status:           apify.RunStatusSucceeded,
		DefaultDatasetID: "stub-dataset-001",
	}, nil
}

// GetDatasetItems implements apify.Client.
func (s *StubApifyClient) GetDatasetItems(_ context.Context, _ string) ([]json.RawMessage, error) {
	return s.Items[s.lastActor], nil
}

// --- LLM stub ---

// StubLLMClient implements llm.Client with canned responses. It detects the
// call kind from the prompt text: classification and judging return JSON,
// generation returns a template-shaped message. Calls is atomic since
// workers invoke Complete concurrently.
type StubLLMClient struct {
	Calls atomic.Int64
}

// Complete implements llm.Client.
func (s *StubLLMClient) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.Calls.Add(1)
	content := strings.ToLower(req.System + " " + req.Prompt)

	var text string
	switch {
	case strings.Contains(content, "accuracy validator"):
		text = `{"service_score": 5, "method_score": 4, "authority_score": 5, "avg_score": 4.7, "inferred_service": "consulting", "actual_service": "consulting", "flag": "PASS", "reason": ""}`
	case strings.Contains(content, "qualification filter"), strings.Contains(content, "icp"):
		text = `{"match": true, "confidence": "high", "reason": "stub qualification"}`
	default:
		text = "Hey there\n\nStub Co looks interesting\n\nYou guys do consulting right? Do that w LinkedIn + email? Or what\n\nOutbound is a tough nut to crack.\nReally comes down to precise targeting + personalisation to book clients at a high level.\n\nSee you're in Stubville. Just been to Fort Lauderdale in the US - and I mean the airport lol Have so many connections now that I need to visit for real. I'm in Glasgow, Scotland"
	}

	return &llm.CompletionResponse{
		Text:         text,
		InputTokens:  150,
		OutputTokens: 50,
	}, nil
}

// --- HeyReach stub ---

// StubHeyReachClient implements heyreach.Client, accepting every lead and
// recording what was uploaded.
type StubHeyReachClient struct {
	Uploaded []heyreach.Lead
	ListIDs  []int
	Stopped  []string
}

// AddLeadsToList implements heyreach.Client.
func (s *StubHeyReachClient) AddLeadsToList(_ context.Context, listID int, leads []heyreach.Lead) (*heyreach.AddResult, error) {
	s.Uploaded = append(s.Uploaded, leads...)
	s.ListIDs = append(s.ListIDs, listID)
	return &heyreach.AddResult{Accepted: len(leads)}, nil
}

// GetList implements heyreach.Client.
func (s *StubHeyReachClient) GetList(_ context.Context, listID int) (*heyreach.List, error) {
	return &heyreach.List{
		ID:         listID,
		Name:       fmt.Sprintf("stub-list-%d", listID),
		TotalItems: len(s.Uploaded),
	}, nil
}

// StopLeadInCampaign implements heyreach.Client.
func (s *StubHeyReachClient) StopLeadInCampaign(_ context.Context, _ int, profileURL string) error {
	s.Stopped = append(s.Stopped, profileURL)
	return nil
}

// CheckAPIKey implements heyreach.Client.
func (s *StubHeyReachClient) CheckAPIKey(_ context.Context) error {
	return nil
}
