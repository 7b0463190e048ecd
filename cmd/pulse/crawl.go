package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"commentpulse/internal/config"
	"commentpulse/internal/crawler"
	"commentpulse/internal/store"
	"commentpulse/internal/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	crawlMaxComments int
	crawlNoStore     bool
	crawlNoBrowser   bool
)

// crawlCmd collects comments from a video page.
var crawlCmd = &cobra.Command{
	Use:   "crawl [url]",
	Short: "Crawl comments from a video page into a JSON dump",
	Long: `Opens the video page in a browser, scrolls the comment feed until it
ends (or limits are hit), and writes the collected comments as a JSON
dump under the data directory. The session is also recorded in SQLite.

Example:
  pulse crawl "https://www.douyin.com/video/7123456789"`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().IntVar(&crawlMaxComments, "max-comments", 0, "Stop after collecting this many comments (0 = config default)")
	crawlCmd.Flags().BoolVar(&crawlNoStore, "no-store", false, "Skip SQLite persistence, only write the dump file")
	crawlCmd.Flags().BoolVar(&crawlNoBrowser, "no-browser", false, "Fetch the page over plain HTTP instead of driving a browser")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if crawlMaxComments > 0 {
		cfg.Crawler.MaxComments = crawlMaxComments
	}

	var (
		ds      *types.Dataset
		session *crawler.Session
	)
	if crawlNoBrowser {
		ds, session, err = fetchPage(ctx, cfg, args[0])
	} else {
		ds, session, err = crawlPage(ctx, cfg, args[0])
	}
	if err != nil {
		return err
	}

	dumpPath, err := saveDump(cfg, ds)
	if err != nil {
		return err
	}

	if !crawlNoStore {
		if err := recordCrawl(cfg, ds, session, dumpPath); err != nil {
			logger.Warn("Could not persist crawl session", zap.Error(err))
		}
	}

	fmt.Printf("Collected %d comments from %s\n", len(ds.Comments), session.VideoID)
	fmt.Printf("Dump: %s\n", dumpPath)
	return nil
}

// crawlPage runs one browser crawl session against a video page.
func crawlPage(ctx context.Context, cfg *config.Config, url string) (*types.Dataset, *crawler.Session, error) {
	c := crawler.New(cfg)
	if err := c.Start(ctx); err != nil {
		logger.Warn("Browser unavailable, falling back to plain HTTP fetch", zap.Error(err))
		return fetchPage(ctx, cfg, url)
	}
	defer func() {
		if err := c.Shutdown(); err != nil {
			logger.Warn("Browser shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Crawling", zap.String("url", url))
	start := time.Now()
	ds, session, err := c.Crawl(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("crawl %s: %w", url, err)
	}
	logger.Info("Crawl finished",
		zap.String("video_id", session.VideoID),
		zap.Int("comments", len(ds.Comments)),
		zap.Duration("elapsed", time.Since(start)))
	return ds, session, nil
}

// fetchPage collects comments over plain HTTP. Used when --no-browser is set
// or when the browser cannot be launched.
func fetchPage(ctx context.Context, cfg *config.Config, url string) (*types.Dataset, *crawler.Session, error) {
	f := crawler.NewFetcher(cfg.Crawler)

	logger.Info("Fetching", zap.String("url", url))
	ds, session, err := f.FetchSession(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	logger.Info("Fetch finished",
		zap.String("video_id", session.VideoID),
		zap.Int("comments", len(ds.Comments)))
	return ds, session, nil
}

// saveDump writes the dataset as a timestamped JSON dump.
func saveDump(cfg *config.Config, ds *types.Dataset) (string, error) {
	if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	name := types.TimestampedFilename("comments_"+ds.VideoInfo.VideoID, "json")
	path := filepath.Join(cfg.Storage.DataDir, name)
	if err := ds.Save(path); err != nil {
		return "", fmt.Errorf("save dump: %w", err)
	}
	return path, nil
}

func recordCrawl(cfg *config.Config, ds *types.Dataset, session *crawler.Session, dumpPath string) error {
	st, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.UpsertComments(session.VideoID, ds.Comments); err != nil {
		return err
	}
	return st.RecordCrawlSession(store.CrawlSession{
		ID:           session.ID,
		URL:          session.URL,
		VideoID:      session.VideoID,
		CommentCount: len(ds.Comments),
		Status:       session.Status,
		DumpPath:     dumpPath,
		StartedAt:    session.StartedAt,
	})
}
