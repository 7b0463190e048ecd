package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"commentpulse/internal/config"
	"commentpulse/internal/logging"
	"commentpulse/internal/types"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// maxBodySize caps response reads from static pages.
const maxBodySize = 2 << 20 // 2MB

// Fetcher retrieves static pages over HTTP and extracts comments from the
// markup. It is the fallback path for pages that render comments server-side
// and for mirrors of the comment feed.
type Fetcher struct {
	client      *http.Client
	limiter     *rate.Limiter
	userAgent   string
	allowed     []string
	blocked     []string
	selectors   Selectors
	maxComments int
}

// NewFetcher creates a rate-limited fetcher from config.
func NewFetcher(cfg config.CrawlerConfig) *Fetcher {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1.0
	}
	return &Fetcher{
		client:      &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		userAgent:   cfg.UserAgent,
		allowed:     cfg.AllowedDomains,
		blocked:     cfg.BlockedDomains,
		selectors:   DefaultSelectors(),
		maxComments: cfg.MaxComments,
	}
}

// FetchSession runs one HTTP fetch against a video page and packages the
// result in the same dataset and session shape the browser crawler produces.
func (f *Fetcher) FetchSession(ctx context.Context, pageURL string) (*types.Dataset, *Session, error) {
	session := &Session{
		ID:        uuid.NewString(),
		URL:       pageURL,
		VideoID:   VideoIDFromURL(pageURL),
		Status:    "running",
		StartedAt: time.Now(),
	}

	comments, err := f.Fetch(ctx, pageURL)
	if err != nil {
		session.Status = "failed"
		return nil, session, err
	}
	if f.maxComments > 0 && len(comments) > f.maxComments {
		comments = comments[:f.maxComments]
	}

	session.Status = "completed"
	session.Collected = len(comments)

	ds := &types.Dataset{
		VideoInfo: types.VideoInfo{
			VideoID:   session.VideoID,
			URL:       pageURL,
			CrawledAt: time.Now().Format(time.RFC3339),
		},
		Comments: comments,
	}
	return ds, session, nil
}

// Fetch retrieves a page and extracts comment records from its markup.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) ([]types.Comment, error) {
	if !f.isDomainAllowed(pageURL) {
		return nil, fmt.Errorf("domain not allowed: %s", pageURL)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	comments := f.extractFromHTML(doc)
	logging.Get(logging.CategoryFetch).Info("fetched %s: %d comments", pageURL, len(comments))
	return comments, nil
}

// isDomainAllowed checks a URL against the block and allow lists.
func (f *Fetcher) isDomainAllowed(url string) bool {
	for _, blocked := range f.blocked {
		if strings.Contains(url, blocked) {
			return false
		}
	}

	if len(f.allowed) == 0 {
		return true
	}

	for _, allowed := range f.allowed {
		if strings.Contains(url, allowed) {
			return true
		}
	}

	return false
}

// extractFromHTML walks the parsed document collecting comment items.
// Attribute selectors of the form [name="value"] are matched directly; other
// selectors match by class substring.
func (f *Fetcher) extractFromHTML(doc *html.Node) []types.Comment {
	var comments []types.Comment

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && matchesSelector(n, f.selectors.CommentItem) {
			content := textOfFirst(n, f.selectors.Content)
			if content != "" {
				likes, err := types.ParseLikeCount(textOfFirst(n, f.selectors.Likes))
				if err != nil {
					likes = 0
				}
				comments = append(comments, types.Comment{
					Author:  textOfFirst(n, f.selectors.Author),
					Content: content,
					Likes:   likes,
				})
			}
			return // comment items do not nest
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	return comments
}

// matchesSelector supports the two selector shapes used here:
// [attr="value"] and .class / bare class substrings.
func matchesSelector(n *html.Node, selector string) bool {
	if strings.HasPrefix(selector, "[") && strings.HasSuffix(selector, "]") {
		inner := selector[1 : len(selector)-1]
		name, value, _ := strings.Cut(inner, "=")
		value = strings.Trim(value, `"`)
		for _, attr := range n.Attr {
			if attr.Key == name && attr.Val == value {
				return true
			}
		}
		return false
	}

	class := strings.TrimPrefix(selector, ".")
	for _, attr := range n.Attr {
		if attr.Key == "class" && strings.Contains(attr.Val, class) {
			return true
		}
	}
	return false
}

// textOfFirst returns the text content of the first descendant matching the
// selector, or "".
func textOfFirst(root *html.Node, selector string) string {
	var found *html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if found != nil {
			return
		}
		if n != root && n.Type == html.ElementNode && matchesSelector(n, selector) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(root)

	if found == nil {
		return ""
	}
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(found)
	return strings.TrimSpace(sb.String())
}
