package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/model"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <profile-url>",
	Short: "Look up a profile URL in the processed-leads ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("lookup"); err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		url := model.NormalizeProfileURL(args[0])
		entry, err := st.GetProcessedLead(ctx, url)
		if err != nil {
			return eris.Wrap(err, "lookup processed lead")
		}
		if entry == nil {
			return eris.Errorf("%s has not been processed", url)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"profile_url": url,
			"name":        entry.Name,
			"added_at":    entry.AddedAt,
			"source":      entry.Source,
			"list_id":     entry.ListID,
		})
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
