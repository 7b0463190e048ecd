package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"commentpulse/internal/config"
	"commentpulse/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	workspace string
	timeout   time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "commentpulse - video comment crawler and opinion analyzer",
	Long: `commentpulse collects comments from short-video pages and turns them
into opinion reports.

A crawl session drives a real browser, scrolls the comment feed, and
saves a JSON dump. Analysis cleans the data, scores sentiment with a
lexicon, mines hot words and topics, and exports an Excel workbook,
HTML charts, and a text report.

Typical flow:
  pulse setup
  pulse crawl "https://www.douyin.com/video/..."
  pulse analyze data/comments_xxx.json`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(resolveWorkspace()); err != nil {
			logger.Warn("File logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(fullCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveWorkspace returns the workspace flag or the current directory.
func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// loadConfig loads the workspace config, falling back to defaults when the
// file is missing.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.ConfigPath(resolveWorkspace()))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	anchorPaths(cfg)
	return cfg, nil
}

// anchorPaths rewrites relative config paths against the workspace so
// commands behave the same regardless of the current directory.
func anchorPaths(cfg *config.Config) {
	cfg.Storage.DatabasePath = resolvePath(cfg.Storage.DatabasePath)
	cfg.Storage.DataDir = resolvePath(cfg.Storage.DataDir)
	cfg.Export.OutputDir = resolvePath(cfg.Export.OutputDir)
	cfg.Export.ChartsDir = resolvePath(cfg.Export.ChartsDir)
	cfg.Watch.InboxDir = resolvePath(cfg.Watch.InboxDir)
	cfg.Analysis.StopwordsFile = resolvePath(cfg.Analysis.StopwordsFile)
	cfg.Analysis.LexiconFile = resolvePath(cfg.Analysis.LexiconFile)
}

// resolvePath anchors a relative config path at the workspace.
func resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(resolveWorkspace(), path)
}
