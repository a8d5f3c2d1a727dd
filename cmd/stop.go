package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/pkg/heyreach"
)

var stopCampaignID int

var stopCmd = &cobra.Command{
	Use:   "stop <profile-url>",
	Short: "Stop a lead's campaign sequence, e.g. after a reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.HeyReach.Key == "" {
			return eris.New("heyreach.key is required")
		}

		hrOpts := []heyreach.Option{heyreach.WithBaseURL(cfg.HeyReach.BaseURL)}
		if cfg.HeyReach.RateRPS > 0 {
			hrOpts = append(hrOpts, heyreach.WithRateLimit(cfg.HeyReach.RateRPS))
		}
		client := heyreach.NewClient(cfg.HeyReach.Key, hrOpts...)

		if err := client.StopLeadInCampaign(ctx, stopCampaignID, args[0]); err != nil {
			return err
		}
		zap.L().Info("lead stopped",
			zap.String("profile", args[0]),
			zap.Int("campaign_id", stopCampaignID),
		)
		return nil
	},
}

func init() {
	stopCmd.Flags().IntVar(&stopCampaignID, "campaign-id", 0, "campaign to stop the lead in (required)")
	_ = stopCmd.MarkFlagRequired("campaign-id")
	rootCmd.AddCommand(stopCmd)
}
