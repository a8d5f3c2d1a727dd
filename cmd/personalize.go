package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/pipeline"
)

var (
	pzInput          string
	pzOutput         string
	pzListID         int
	pzCriteria       string
	pzRequalify      bool
	pzSkipValidation bool
)

var personalizeCmd = &cobra.Command{
	Use:   "personalize",
	Short: "Generate and validate messages for already-scraped profiles",
	Long: `personalize reads a JSON file of scraped profiles, generates a
personalized message for each, validates the messages, and either uploads
the surviving leads to a list or writes them back out as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(pzInput)
		if err != nil {
			return eris.Wrap(err, "read input file")
		}
		var profiles []model.Profile
		if err := json.Unmarshal(data, &profiles); err != nil {
			return eris.Wrap(err, "parse input file")
		}
		if len(profiles) == 0 {
			return eris.New("input file has no profiles")
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		leads := env.Pipeline.QualifyBatch(ctx, profiles, pzCriteria, !pzRequalify)
		qualified := leads[:0]
		for _, lead := range leads {
			if lead.ICP.Match {
				qualified = append(qualified, lead)
			}
		}
		zap.L().Info("qualification complete",
			zap.Int("profiles", len(profiles)),
			zap.Int("qualified", len(qualified)),
		)
		if len(qualified) == 0 {
			return eris.New("no profiles qualified")
		}

		qualified = env.Pipeline.PersonalizeBatch(ctx, qualified)
		if !pzSkipValidation {
			var stats pipeline.ValidationStats
			qualified, stats = env.Pipeline.ValidateAndCorrect(ctx, qualified)
			zap.L().Info("validation complete",
				zap.Int("passed", stats.Passed),
				zap.Int("flagged", stats.Flagged),
				zap.Int("errored", stats.Errored),
				zap.Int("corrected", stats.Corrected),
			)
		}

		if pzOutput != "" {
			out, err := json.MarshalIndent(qualified, "", "  ")
			if err != nil {
				return eris.Wrap(err, "encode leads")
			}
			if err := os.WriteFile(pzOutput, out, 0o644); err != nil {
				return eris.Wrap(err, "write output file")
			}
			zap.L().Info("leads written", zap.String("path", pzOutput), zap.Int("leads", len(qualified)))
			fmt.Println(env.Tracker.Summary())
			return nil
		}

		if pzListID == 0 {
			return eris.New("either --output or --list-id is required")
		}
		uploaded, err := env.Pipeline.Upload(ctx, qualified, pzListID)
		if err != nil {
			return eris.Wrap(err, "upload leads")
		}
		if err := env.Pipeline.RecordProcessed(ctx, qualified, "personalize", pzListID); err != nil {
			return err
		}
		zap.L().Info("upload complete",
			zap.Int("accepted", uploaded.Accepted),
			zap.Int("failed", uploaded.Failed),
		)
		fmt.Println(env.Tracker.Summary())
		return nil
	},
}

func init() {
	personalizeCmd.Flags().StringVar(&pzInput, "input", "", "JSON file of scraped profiles (required)")
	personalizeCmd.Flags().StringVar(&pzOutput, "output", "", "write leads to this JSON file instead of uploading")
	personalizeCmd.Flags().IntVar(&pzListID, "list-id", 0, "destination list ID")
	personalizeCmd.Flags().StringVar(&pzCriteria, "icp-criteria", "", "custom ICP criteria (used with --requalify)")
	personalizeCmd.Flags().BoolVar(&pzRequalify, "requalify", false, "re-run ICP qualification before personalizing")
	personalizeCmd.Flags().BoolVar(&pzSkipValidation, "skip-validation", false, "skip message validation and correction")
	_ = personalizeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(personalizeCmd)
}
