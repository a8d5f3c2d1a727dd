package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/pipeline"
)

var (
	runPostURLs       []string
	runListID         int
	runSource         string
	runCriteria       string
	runCountries      []string
	runDryRun         bool
	runSkipICP        bool
	runSkipValidation bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full funnel for a set of post URLs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Run(ctx, pipeline.RunOptions{
			PostURLs:       runPostURLs,
			ListID:         runListID,
			Source:         runSource,
			ICPCriteria:    runCriteria,
			Countries:      runCountries,
			DryRun:         runDryRun,
			SkipICP:        runSkipICP,
			SkipValidation: runSkipValidation,
		})
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("run complete",
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

		if len(result.Leads) == 0 {
			return eris.New("no leads qualified")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runPostURLs, "post-urls", nil, "LinkedIn post URLs to collect engagers from (required)")
	runCmd.Flags().IntVar(&runListID, "list-id", 0, "destination HeyReach list ID (required)")
	runCmd.Flags().StringVar(&runSource, "source", "manual", "run source recorded in the processed ledger")
	runCmd.Flags().StringVar(&runCriteria, "icp-criteria", "", "custom ICP criteria for the qualification prompt")
	runCmd.Flags().StringSliceVar(&runCountries, "countries", nil, "allowed countries (overrides config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "run the funnel without uploading or recording leads")
	runCmd.Flags().BoolVar(&runSkipICP, "skip-icp", false, "skip ICP qualification, keep every complete profile")
	runCmd.Flags().BoolVar(&runSkipValidation, "skip-validation", false, "skip message validation and correction")
	_ = runCmd.MarkFlagRequired("post-urls")
	_ = runCmd.MarkFlagRequired("list-id")
	rootCmd.AddCommand(runCmd)
}
