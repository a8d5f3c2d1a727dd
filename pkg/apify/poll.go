package apify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// PollConfig controls the wait-then-poll loop for asynchronous actor runs.
// Profile scrapes take minutes, so the loop sleeps a long fixed interval
// before the first status check and then polls at a fixed cadence; there is
// no backoff.
type PollConfig struct {
	InitialWait time.Duration
	Interval    time.Duration
	Timeout     time.Duration
}

// DefaultPollConfig matches the profile-scraper actor's typical run time.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		InitialWait: 2 * time.Minute,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Minute,
	}
}

// WaitForRun blocks until the run reaches a terminal status, then returns the
// run's dataset items. A run that terminates in any status other than
// SUCCEEDED is an error.
func WaitForRun(ctx context.Context, client Client, runID string, cfg PollConfig) ([]json.RawMessage, error) {
	log := zap.L().With(zap.String("run_id", runID))

	deadline := time.Now().Add(cfg.Timeout)
	if err := sleep(ctx, cfg.InitialWait); err != nil {
		return nil, eris.Wrap(err, "apify: poll wait")
	}

	for {
		run, err := client.GetRun(ctx, runID)
		if err != nil {
			return nil, err
		}
		if run.Finished() {
			if run.Status != RunStatusSucceeded {
				return nil, eris.Errorf("apify: run %s ended with status %s", runID, run.Status)
			}
			log.Debug("apify: run succeeded", zap.String("dataset_id", run.DefaultDatasetID))
			return client.GetDatasetItems(ctx, run.DefaultDatasetID)
		}

		if time.Now().After(deadline) {
			return nil, eris.Errorf("apify: run %s still %s after %s", runID, run.Status, cfg.Timeout)
		}
		log.Debug("apify: run in progress", zap.String("status", run.Status))
		if err := sleep(ctx, cfg.Interval); err != nil {
			return nil, eris.Wrap(err, "apify: poll wait")
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
