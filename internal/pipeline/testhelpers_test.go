package pipeline

import (
	"context"
	"testing"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/cost"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/pkg/apify"
	"github.com/sells-group/outreach-cli/pkg/heyreach"
	"github.com/sells-group/outreach-cli/pkg/llm"
)

// scriptedLLM returns queued responses in order, then errors.
type scriptedLLM struct {
	responses []scriptedResponse
	calls     []llm.CompletionRequest
}

type scriptedResponse struct {
	text string
	err  error
}

func (s *scriptedLLM) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.calls = append(s.calls, req)
	if len(s.responses) == 0 {
		return nil, errNoMoreResponses
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	if next.err != nil {
		return nil, next.err
	}
	return &llm.CompletionResponse{Text: next.text, InputTokens: 100, OutputTokens: 50}, nil
}

var errNoMoreResponses = errScripted("no scripted responses left")

type errScripted string

func (e errScripted) Error() string { return string(e) }

func testConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			AllowedCountries: []string{"United States", "United Kingdom"},
			MinReactions:     50,
			MaxWorkers:       1,
		},
		Pricing: cost.DefaultRates(),
	}
}

// newTestPipeline builds a Pipeline over a JSON store in a temp dir. Any of
// the clients may be nil.
func newTestPipeline(t *testing.T, apifyClient apify.Client, llmClient llm.Client, hrClient heyreach.Client) (*Pipeline, store.Store) {
	t.Helper()
	cfg := testConfig()
	st := store.NewJSON(t.TempDir())
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate store: %v", err)
	}
	tracker := cost.NewTracker(cfg.Pricing)
	return New(cfg, st, apifyClient, llmClient, hrClient, tracker), st
}
