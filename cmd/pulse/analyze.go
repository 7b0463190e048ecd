package main

import (
	"context"
	"fmt"

	"commentpulse/internal/config"
	"commentpulse/internal/pipeline"
	"commentpulse/internal/stats"
	"commentpulse/internal/store"
	"commentpulse/internal/types"

	"github.com/spf13/cobra"
)

var (
	analyzeOutliers bool
	fullNoStore     bool
)

// analyzeCmd loads and cleans a dump and prints descriptive statistics.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [dump-file]",
	Short: "Clean a comment dump and print descriptive statistics",
	Long: `Loads a JSON comment dump, trims and deduplicates the records, and
prints an overview: comment and author counts, like-count statistics,
and the posting time range. Use 'pulse full' for sentiment analysis and
report generation.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

// fullCmd runs the complete pipeline over a dump file.
var fullCmd = &cobra.Command{
	Use:   "full [dump-file]",
	Short: "Run the full analysis pipeline on a comment dump",
	Long: `Runs the complete pipeline on a dump: cleaning, lexicon sentiment
scoring, word frequency mining, and hot-topic detection, then writes an
Excel workbook, HTML charts, and a text report to the output directory
and records the run in SQLite.

Example:
  pulse full output/data/comments_7123456789_20240101_120000.json`,
	Args: cobra.ExactArgs(1),
	RunE: runFull,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeOutliers, "outliers", false, "Also report like-count outliers")
	fullCmd.Flags().BoolVar(&fullNoStore, "no-store", false, "Skip SQLite persistence")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ds, err := types.LoadDataset(args[0])
	if err != nil {
		return err
	}

	cleaned, cleanStats := stats.Clean(ds.Comments)
	ds.Comments = cleaned

	fmt.Printf("Loaded %s: %d comments (%d blank, %d duplicates removed)\n\n",
		args[0], cleanStats.After, cleanStats.Blank, cleanStats.Duplicates)
	fmt.Print(stats.SummaryReport(ds))

	if analyzeOutliers {
		printOutliers(cfg, ds.Comments)
	}
	return nil
}

func runFull(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, st, err := buildPipeline(cfg, fullNoStore)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	result, err := p.RunFile(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Print(result.ReportText)
	return nil
}

// buildPipeline constructs the analysis pipeline, opening the store unless
// persistence is disabled.
func buildPipeline(cfg *config.Config, noStore bool) (*pipeline.Pipeline, *store.Store, error) {
	var st *store.Store
	if !noStore {
		var err error
		st, err = store.Open(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
	}

	p, err := pipeline.New(cfg, st)
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, nil, err
	}
	return p, st, nil
}

func printOutliers(cfg *config.Config, comments []types.Comment) {
	outliers, err := stats.Outliers(comments, cfg.Analysis.OutlierMethod, cfg.Analysis.OutlierThreshold)
	if err != nil {
		fmt.Printf("\nOutlier detection failed: %v\n", err)
		return
	}
	if len(outliers) == 0 {
		fmt.Println("\nNo like-count outliers detected.")
		return
	}
	fmt.Printf("\nLike-count outliers (%s): %d\n", cfg.Analysis.OutlierMethod, len(outliers))
	for i, c := range outliers {
		if i >= 10 {
			fmt.Printf("  ... and %d more\n", len(outliers)-10)
			break
		}
		fmt.Printf("  %s (%d likes): %s\n", c.Author, c.Likes, truncate(c.Content, 40))
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
