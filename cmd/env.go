package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/cost"
	"github.com/sells-group/outreach-cli/internal/pipeline"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/pkg/apify"
	"github.com/sells-group/outreach-cli/pkg/heyreach"
	"github.com/sells-group/outreach-cli/pkg/llm"
)

// pipelineEnv holds the store, clients, and pipeline shared by the run,
// search, monitor, and personalize commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	Tracker  *cost.Tracker
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the persistence backend named by store.driver.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	switch c.Store.Driver {
	case "json":
		return store.NewJSON(c.Store.DataDir), nil
	case "sqlite":
		dsn := c.Store.SQLitePath
		if dsn == "" {
			dsn = "outreach.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, c.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
}

// newLLMClient builds the configured completion client. Returns nil when no
// key is set; pipeline stages then degrade to their local fallbacks.
func newLLMClient(c *config.Config) llm.Client {
	timeout := llm.DefaultTimeout
	if c.LLM.TimeoutSecs > 0 {
		timeout = time.Duration(c.LLM.TimeoutSecs) * time.Second
	}

	switch c.LLM.Provider {
	case "anthropic":
		if c.LLM.AnthropicKey == "" {
			zap.L().Warn("llm.anthropic_key not set, ICP and personalization will use local fallbacks")
			return nil
		}
		return llm.NewAnthropic(c.LLM.AnthropicKey,
			llm.WithAnthropicModel(c.LLM.AnthropicModel),
			llm.WithAnthropicTimeout(timeout),
		)
	default:
		if c.LLM.Key == "" {
			zap.L().Warn("llm.key not set, ICP and personalization will use local fallbacks")
			return nil
		}
		return llm.NewDeepSeek(c.LLM.Key,
			llm.WithBaseURL(c.LLM.BaseURL),
			llm.WithModel(c.LLM.Model),
			llm.WithTimeout(timeout),
		)
	}
}

// initPipeline sets up the store and all API clients and builds the
// Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate("pipeline"); err != nil {
		return nil, err
	}

	st, err := initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	apifyClient := apify.NewClient(cfg.Apify.Token, apify.WithBaseURL(cfg.Apify.BaseURL))

	hrOpts := []heyreach.Option{heyreach.WithBaseURL(cfg.HeyReach.BaseURL)}
	if cfg.HeyReach.ChunkSize > 0 {
		hrOpts = append(hrOpts, heyreach.WithChunkSize(cfg.HeyReach.ChunkSize))
	}
	if cfg.HeyReach.RateRPS > 0 {
		hrOpts = append(hrOpts, heyreach.WithRateLimit(cfg.HeyReach.RateRPS))
	}
	hrClient := heyreach.NewClient(cfg.HeyReach.Key, hrOpts...)

	tracker := cost.NewTracker(cfg.Pricing)
	p := pipeline.New(cfg, st, apifyClient, newLLMClient(cfg), hrClient, tracker)

	return &pipelineEnv{
		Store:    st,
		Pipeline: p,
		Tracker:  tracker,
	}, nil
}
