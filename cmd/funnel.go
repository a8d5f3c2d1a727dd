package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/pipeline"
)

// runFunnel executes the full funnel for a set of post URLs and prints the
// end-of-run report. Shared by the search and monitor commands.
func runFunnel(ctx context.Context, env *pipelineEnv, postURLs []string, listID int, source string, dryRun bool) error {
	result, err := env.Pipeline.Run(ctx, pipeline.RunOptions{
		PostURLs: postURLs,
		ListID:   listID,
		Source:   source,
		DryRun:   dryRun,
	})
	if err != nil {
		return eris.Wrap(err, "pipeline run")
	}

	zap.L().Info("funnel complete",
		zap.String("source", source),
		zap.Int("qualified", len(result.Leads)),
		zap.Int("uploaded", result.Stats.Uploaded),
		zap.Duration("duration", result.Duration),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Stats); err != nil {
		return eris.Wrap(err, "encode funnel stats")
	}
	fmt.Println(env.Tracker.Summary())
	return nil
}
