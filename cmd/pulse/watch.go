package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"commentpulse/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchCmd analyzes dump files as they land in the inbox directory.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbox directory and analyze new comment dumps",
	Long: `Watches the inbox directory for new JSON comment dumps and runs the
full analysis pipeline on each one as it arrives. Runs until
interrupted.

Drop dump files into the inbox (by hand or from a separate crawl) and
reports appear in the output directory.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Watch.InboxDir, 0755); err != nil {
		return fmt.Errorf("create inbox dir: %w", err)
	}

	p, st, err := buildPipeline(cfg, false)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	handler := func(ctx context.Context, path string) error {
		logger.Info("Analyzing dump", zap.String("path", path))
		result, err := p.RunFile(ctx, path)
		if err != nil {
			return err
		}
		fmt.Printf("Analyzed %s: %d comments, report %s\n",
			path, len(result.Dataset.Comments), result.ReportPath)
		return nil
	}

	w, err := watch.New(cfg.Watch.InboxDir, cfg.GetWatchDebounce(), handler)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	fmt.Printf("Watching %s for comment dumps (Ctrl-C to stop)\n", cfg.Watch.InboxDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	<-sigCh

	w.Stop()
	stats := w.GetStats()
	fmt.Printf("Stopped. Files seen: %d, analyzed: %d, errors: %d\n",
		stats.FilesSeen, stats.FilesHandled, stats.Errors)
	return nil
}
