package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// monitorConfig is the top-level shape of monitors.yaml.
type monitorConfig struct {
	ListID   int       `yaml:"list_id"`
	Monitors []monitor `yaml:"monitors"`
}

// monitor is one watch-list entry. Competitor monitors search for recent
// high-engagement posts by keyword; influencer monitors watch fixed post
// URLs. A single entry may carry both.
type monitor struct {
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"` // competitor or influencer
	Keywords     []string `yaml:"keywords,omitempty"`
	PostURLs     []string `yaml:"post_urls,omitempty"`
	Days         int      `yaml:"days,omitempty"`
	MinReactions int      `yaml:"min_reactions,omitempty"`
	ListID       int      `yaml:"list_id,omitempty"`
}

// loadMonitors reads and validates a monitors.yaml watch list.
func loadMonitors(path string) (*monitorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read monitors file")
	}
	var mc monitorConfig
	if err := yaml.Unmarshal(data, &mc); err != nil {
		return nil, eris.Wrap(err, "parse monitors file")
	}
	if len(mc.Monitors) == 0 {
		return nil, eris.New("monitors file has no monitors")
	}
	for i, m := range mc.Monitors {
		if m.Name == "" {
			return nil, eris.Errorf("monitor %d has no name", i)
		}
		if len(m.Keywords) == 0 && len(m.PostURLs) == 0 {
			return nil, eris.Errorf("monitor %q has no keywords and no post_urls", m.Name)
		}
	}
	return &mc, nil
}

var (
	monitorFile   string
	monitorOnly   string
	monitorListID int
	monitorDryRun bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the competitor and influencer watch lists from monitors.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mc, err := loadMonitors(monitorFile)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		ran := 0
		for _, m := range mc.Monitors {
			if monitorOnly != "" && m.Name != monitorOnly {
				continue
			}
			ran++
			if err := runMonitor(ctx, env, mc, m); err != nil {
				zap.L().Error("monitor failed", zap.String("monitor", m.Name), zap.Error(err))
			}
		}
		if ran == 0 {
			return eris.Errorf("no monitor named %q in %s", monitorOnly, monitorFile)
		}
		return nil
	},
}

func runMonitor(ctx context.Context, env *pipelineEnv, mc *monitorConfig, m monitor) error {
	log := zap.L().With(zap.String("monitor", m.Name), zap.String("type", m.Type))
	log.Info("monitor: starting")

	days := m.Days
	if days == 0 {
		days = 7
	}
	minReactions := m.MinReactions
	if minReactions == 0 {
		minReactions = cfg.Pipeline.MinReactions
	}

	postURLs := append([]string(nil), m.PostURLs...)
	for _, kw := range m.Keywords {
		posts, total, err := env.Pipeline.SearchPosts(ctx, kw, days, minReactions)
		if err != nil {
			log.Warn("monitor: keyword search failed", zap.String("keyword", kw), zap.Error(err))
			continue
		}
		log.Info("monitor: keyword search complete",
			zap.String("keyword", kw),
			zap.Int("results", total),
			zap.Int("kept", len(posts)),
		)
		for _, post := range posts {
			postURLs = append(postURLs, post.URL)
		}
	}
	if len(postURLs) == 0 {
		log.Info("monitor: no posts found")
		return nil
	}

	listID := monitorListID
	if listID == 0 {
		listID = m.ListID
	}
	if listID == 0 {
		listID = mc.ListID
	}
	if listID == 0 {
		return eris.Errorf("monitor %q has no list ID (set list_id or --list-id)", m.Name)
	}

	return runFunnel(ctx, env, postURLs, listID, "monitor:"+m.Type+":"+m.Name, monitorDryRun)
}

func init() {
	monitorCmd.Flags().StringVar(&monitorFile, "config", "monitors.yaml", "watch list file")
	monitorCmd.Flags().StringVar(&monitorOnly, "only", "", "run a single monitor by name")
	monitorCmd.Flags().IntVar(&monitorListID, "list-id", 0, "destination list ID (overrides the watch list)")
	monitorCmd.Flags().BoolVar(&monitorDryRun, "dry-run", false, "run the funnel without uploading or recording leads")
	rootCmd.AddCommand(monitorCmd)
}
