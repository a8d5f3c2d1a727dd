package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/review"
)

var (
	exportInput  string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export flagged messages to a validation review spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}

		data, err := os.ReadFile(exportInput)
		if err != nil {
			return eris.Wrap(err, "read leads file")
		}
		var leads []model.Lead
		if err := json.Unmarshal(data, &leads); err != nil {
			return eris.Wrap(err, "parse leads file")
		}

		flagged := review.FilterFlagged(leads)
		if len(flagged) == 0 {
			zap.L().Info("no flagged messages to review", zap.Int("leads", len(leads)))
			return nil
		}

		if err := review.WriteXLSX(exportOutput, flagged); err != nil {
			return err
		}
		zap.L().Info("review sheet written",
			zap.String("path", exportOutput),
			zap.Int("flagged", len(flagged)),
			zap.Int("total", len(leads)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "JSON file of leads with validation results (required)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "validation_review.xlsx", "output spreadsheet path")
	_ = exportCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(exportCmd)
}
