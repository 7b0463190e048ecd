// Package crawler collects comments from short-video pages. The primary path
// drives a real browser through rod, scrolling the comment feed and reading
// rendered comment nodes; a rate-limited HTTP fetcher handles static pages.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"commentpulse/internal/config"
	"commentpulse/internal/logging"
	"commentpulse/internal/types"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// Selectors identify comment nodes in the rendered page. The defaults match
// the douyin comment feed; override for other platforms.
type Selectors struct {
	CommentItem string
	Author      string
	Content     string
	Likes       string
	FeedEnd     string
}

// DefaultSelectors returns selectors for the douyin comment feed.
func DefaultSelectors() Selectors {
	return Selectors{
		CommentItem: `[data-e2e="comment-item"]`,
		Author:      `[data-e2e="comment-item-username"]`,
		Content:     `[data-e2e="comment-item-content"]`,
		Likes:       `[data-e2e="comment-item-like-count"]`,
		FeedEnd:     `[data-e2e="comment-list-end"]`,
	}
}

// Session is one tracked crawl of a video page.
type Session struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	VideoID   string    `json:"video_id"`
	Status    string    `json:"status"`
	Collected int       `json:"collected"`
	StartedAt time.Time `json:"started_at"`
}

// Crawler owns the browser instance and runs crawl sessions.
type Crawler struct {
	cfg       config.CrawlerConfig
	selectors Selectors

	mu         sync.Mutex
	browser    *rod.Browser
	controlURL string

	navTimeout  time.Duration
	scrollPause time.Duration
}

// New creates a crawler from config.
func New(cfg *config.Config) *Crawler {
	return &Crawler{
		cfg:         cfg.Crawler,
		selectors:   DefaultSelectors(),
		navTimeout:  cfg.GetNavigationTimeout(),
		scrollPause: cfg.GetScrollPause(),
	}
}

// SetSelectors overrides the comment feed selectors.
func (c *Crawler) SetSelectors(s Selectors) {
	c.selectors = s
}

// Start connects to an existing Chrome or launches a new one.
func (c *Crawler) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil {
		if _, err := c.browser.Version(); err == nil {
			return nil // Browser is healthy
		}
		logging.Crawler("stale browser connection detected, reconnecting")
		_ = c.browser.Close()
		c.browser = nil
		c.controlURL = ""
	}

	controlURL := c.cfg.DebuggerURL
	if controlURL == "" {
		launch := launcher.New().Headless(c.cfg.Headless)
		if c.cfg.BrowserBin != "" {
			launch = launch.Bin(c.cfg.BrowserBin)
		}
		u, err := launch.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	c.browser = browser
	c.controlURL = controlURL
	logging.Crawler("browser connected: %s", controlURL)
	return nil
}

// Shutdown closes the browser.
func (c *Crawler) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	c.controlURL = ""
	return err
}

// extractScript reads all rendered comment nodes in one round trip.
const extractScript = `(itemSel, authorSel, contentSel, likesSel) => {
	const items = document.querySelectorAll(itemSel);
	const out = [];
	for (const item of items) {
		const author = item.querySelector(authorSel);
		const content = item.querySelector(contentSel);
		const likes = item.querySelector(likesSel);
		out.push({
			author: author ? author.textContent.trim() : "",
			content: content ? content.textContent.trim() : "",
			likes: likes ? likes.textContent.trim() : "0",
		});
	}
	return out;
}`

// Crawl opens the video page, scrolls the comment feed, and returns the
// collected dataset. The page is closed before returning.
func (c *Crawler) Crawl(ctx context.Context, pageURL string) (*types.Dataset, *Session, error) {
	timer := logging.StartTimer(logging.CategoryCrawler, "Crawl")
	defer timer.Stop()

	if err := c.Start(ctx); err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	browser := c.browser
	c.mu.Unlock()
	if browser == nil {
		return nil, nil, errors.New("browser not connected")
	}

	session := &Session{
		ID:        uuid.NewString(),
		URL:       pageURL,
		VideoID:   VideoIDFromURL(pageURL),
		Status:    "running",
		StartedAt: time.Now(),
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, session, fmt.Errorf("incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, session, fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             c.cfg.ViewportWidth,
		Height:            c.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		logging.CrawlerDebug("failed to set viewport: %v", err)
	}

	if err := page.Timeout(c.navTimeout).WaitLoad(); err != nil {
		return nil, session, fmt.Errorf("page load: %w", err)
	}

	comments, err := c.scrollAndExtract(ctx, page)
	if err != nil {
		session.Status = "failed"
		return nil, session, err
	}

	session.Status = "completed"
	session.Collected = len(comments)
	logging.Crawler("session %s collected %d comments from %s", session.ID, len(comments), pageURL)

	ds := &types.Dataset{
		VideoInfo: VideoInfo(page, pageURL),
		Comments:  comments,
	}
	return ds, session, nil
}

// scrollAndExtract repeatedly scrolls the feed and re-reads comment nodes
// until no new comments appear, the feed-end marker shows up, the configured
// round or comment limit is hit, or the context is cancelled.
func (c *Crawler) scrollAndExtract(ctx context.Context, page *rod.Page) ([]types.Comment, error) {
	seen := make(map[string]struct{})
	var comments []types.Comment

	stale := 0
	for round := 0; round < c.cfg.ScrollRounds; round++ {
		select {
		case <-ctx.Done():
			return comments, ctx.Err()
		default:
		}

		batch, err := c.extract(page)
		if err != nil {
			return comments, err
		}

		grew := false
		for _, comment := range batch {
			key := comment.Author + "\x00" + comment.Content
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			comments = append(comments, comment)
			grew = true
		}

		if c.cfg.MaxComments > 0 && len(comments) >= c.cfg.MaxComments {
			comments = comments[:c.cfg.MaxComments]
			break
		}

		// Two consecutive rounds without growth means the feed is exhausted.
		if grew {
			stale = 0
		} else {
			stale++
			if stale >= 2 {
				break
			}
		}

		if c.feedEnded(page) {
			break
		}

		if _, err := page.Eval(`() => window.scrollBy(0, window.innerHeight)`); err != nil {
			logging.CrawlerDebug("scroll failed: %v", err)
		}
		time.Sleep(c.scrollPause)
	}

	return comments, nil
}

func (c *Crawler) extract(page *rod.Page) ([]types.Comment, error) {
	res, err := page.Eval(extractScript,
		c.selectors.CommentItem, c.selectors.Author, c.selectors.Content, c.selectors.Likes)
	if err != nil {
		return nil, fmt.Errorf("extract comments: %w", err)
	}

	var comments []types.Comment
	for _, item := range res.Value.Arr() {
		content := item.Get("content").Str()
		if content == "" {
			continue
		}
		likes, err := types.ParseLikeCount(item.Get("likes").Str())
		if err != nil {
			likes = 0
		}
		comments = append(comments, types.Comment{
			Author:  item.Get("author").Str(),
			Content: content,
			Likes:   likes,
		})
	}
	return comments, nil
}

func (c *Crawler) feedEnded(page *rod.Page) bool {
	if c.selectors.FeedEnd == "" {
		return false
	}
	has, _, err := page.Has(c.selectors.FeedEnd)
	return err == nil && has
}

// VideoInfo builds metadata for the crawled page.
func VideoInfo(page *rod.Page, pageURL string) types.VideoInfo {
	info := types.VideoInfo{
		VideoID:   VideoIDFromURL(pageURL),
		URL:       pageURL,
		CrawledAt: time.Now().Format(time.RFC3339),
	}
	if page != nil {
		if title, err := page.Eval(`() => document.title`); err == nil {
			info.Title = title.Value.Str()
		}
	}
	return info
}

// VideoIDFromURL extracts the video identifier from a share URL, falling back
// to the last path segment.
func VideoIDFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	if id := u.Query().Get("modal_id"); id != "" {
		return id
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return u.Host
	}
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}
