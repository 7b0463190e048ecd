package main

import (
	"fmt"
	"os"
	"path/filepath"

	"commentpulse/internal/config"
	"commentpulse/internal/store"

	"github.com/spf13/cobra"
)

// statusCmd shows workspace and database state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workspace status and stored analysis history",
	RunE:  runStatus,
}

// setupCmd initializes a workspace.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Initialize the workspace",
	Long: `Creates the .pulse/ directory with a default config.yaml, plus the
data, inbox, and output directories. Run once per workspace; existing
config files are left alone.`,
	RunE: runSetup,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	cfgPath := config.ConfigPath(ws)

	fmt.Printf("Workspace: %s\n", ws)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println("Not initialized. Run 'pulse setup' first.")
		return nil
	}
	fmt.Printf("Config:    %s\n", cfgPath)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Storage.DatabasePath); err != nil {
		fmt.Println("Database:  not created yet")
		return nil
	}

	st, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	counts, err := st.GetStats()
	if err != nil {
		return err
	}
	fmt.Printf("Database:  %s\n", cfg.Storage.DatabasePath)
	fmt.Printf("  comments:       %d\n", counts["comments"])
	fmt.Printf("  crawl sessions: %d\n", counts["crawl_sessions"])
	fmt.Printf("  analysis runs:  %d\n", counts["analysis_runs"])

	session, err := st.LastCrawlSession()
	if err != nil {
		return err
	}
	if session != nil {
		fmt.Printf("\nLast crawl (%s):\n", session.ID)
		fmt.Printf("  url:      %s\n", session.URL)
		fmt.Printf("  video:    %s\n", session.VideoID)
		fmt.Printf("  comments: %d (%s)\n", session.CommentCount, session.Status)
		if session.DumpPath != "" {
			fmt.Printf("  dump:     %s\n", session.DumpPath)
		}
	}

	run, err := st.LastAnalysisRun()
	if err != nil {
		return err
	}
	if run == nil {
		fmt.Println("No analysis runs yet.")
		return nil
	}

	fmt.Printf("\nLast analysis (%s):\n", run.ID)
	fmt.Printf("  source:   %s\n", run.SourcePath)
	fmt.Printf("  comments: %d (positive %d / negative %d / neutral %d)\n",
		run.CommentCount, run.Positive, run.Negative, run.Neutral)
	fmt.Printf("  mean sentiment: %.3f\n", run.MeanScore)
	fmt.Printf("  words: %d total, %d unique\n", run.TotalWords, run.UniqueWords)
	if run.ReportPath != "" {
		fmt.Printf("  report: %s\n", run.ReportPath)
	}
	return nil
}

func runSetup(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	cfgPath := config.ConfigPath(ws)

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Println("Workspace already initialized. Use 'pulse status' to inspect it.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := cfg.Save(cfgPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	for _, dir := range []string{
		cfg.Storage.DataDir,
		cfg.Watch.InboxDir,
		cfg.Export.OutputDir,
		cfg.Export.ChartsDir,
	} {
		if err := os.MkdirAll(filepath.Join(ws, dir), 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	fmt.Printf("Initialized workspace at %s\n", ws)
	fmt.Printf("Config: %s\n", cfgPath)
	fmt.Println("Next: pulse crawl \"<video url>\"")
	return nil
}
