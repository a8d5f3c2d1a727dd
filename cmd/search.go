package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	searchKeyword      string
	searchDays         int
	searchMinReactions int
	searchListID       int
	searchDryRun       bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find high-engagement posts for a keyword and run the funnel on them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		minReactions := searchMinReactions
		if minReactions == 0 {
			minReactions = cfg.Pipeline.MinReactions
		}

		posts, total, err := env.Pipeline.SearchPosts(ctx, searchKeyword, searchDays, minReactions)
		if err != nil {
			return eris.Wrap(err, "search posts")
		}
		zap.L().Info("search complete",
			zap.String("keyword", searchKeyword),
			zap.Int("results", total),
			zap.Int("kept", len(posts)),
		)

		if len(posts) == 0 {
			return eris.Errorf("no posts with %d+ reactions found for %q", minReactions, searchKeyword)
		}

		// Without a destination list this is discovery only: print the posts
		// and stop before any paid scraping.
		if searchListID == 0 {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(posts)
		}

		urls := make([]string, 0, len(posts))
		for _, post := range posts {
			urls = append(urls, post.URL)
		}
		return runFunnel(ctx, env, urls, searchListID, "search:"+searchKeyword, searchDryRun)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchKeyword, "keyword", "", "search keyword (required)")
	searchCmd.Flags().IntVar(&searchDays, "days", 7, "how many days back to search")
	searchCmd.Flags().IntVar(&searchMinReactions, "min-reactions", 0, "minimum reaction count (default from config)")
	searchCmd.Flags().IntVar(&searchListID, "list-id", 0, "destination list ID; omit to only print found posts")
	searchCmd.Flags().BoolVar(&searchDryRun, "dry-run", false, "run the funnel without uploading or recording leads")
	_ = searchCmd.MarkFlagRequired("keyword")
	rootCmd.AddCommand(searchCmd)
}
