package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"commentpulse/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestVideoIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.douyin.com/video/7123456789", "7123456789"},
		{"https://www.douyin.com/video/7123456789?foo=1", "7123456789"},
		{"https://www.douyin.com/discover?modal_id=7404061098231", "7404061098231"},
		{"https://www.douyin.com/", "www.douyin.com"},
		{"7123", "7123"},
	}

	for _, tt := range tests {
		if got := VideoIDFromURL(tt.url); got != tt.want {
			t.Errorf("VideoIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestMatchesSelector(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(
		`<div data-e2e="comment-item" class="comment wrap"></div>`))
	require.NoError(t, err)

	var div *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" {
			div = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	require.NotNil(t, div)

	assert.True(t, matchesSelector(div, `[data-e2e="comment-item"]`))
	assert.False(t, matchesSelector(div, `[data-e2e="comment-list"]`))
	assert.True(t, matchesSelector(div, ".comment"))
	assert.True(t, matchesSelector(div, "wrap"))
	assert.False(t, matchesSelector(div, ".reply"))
}

const commentPage = `<html><body>
<div data-e2e="comment-item">
	<span data-e2e="comment-item-username">小明</span>
	<p data-e2e="comment-item-content">画面太好看了</p>
	<span data-e2e="comment-item-like-count">1.2万</span>
</div>
<div data-e2e="comment-item">
	<span data-e2e="comment-item-username">小红</span>
	<p data-e2e="comment-item-content">一般般</p>
	<span data-e2e="comment-item-like-count">3</span>
</div>
<div data-e2e="comment-item">
	<span data-e2e="comment-item-username">ghost</span>
	<span data-e2e="comment-item-like-count">9</span>
</div>
</body></html>`

func TestExtractFromHTML(t *testing.T) {
	f := NewFetcher(config.DefaultConfig().Crawler)

	doc, err := html.Parse(strings.NewReader(commentPage))
	require.NoError(t, err)

	comments := f.extractFromHTML(doc)
	require.Len(t, comments, 2) // the empty-content item is dropped

	assert.Equal(t, "小明", comments[0].Author)
	assert.Equal(t, "画面太好看了", comments[0].Content)
	assert.Equal(t, int64(12000), comments[0].Likes)
	assert.Equal(t, int64(3), comments[1].Likes)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, commentPage)
	}))
	defer srv.Close()

	f := NewFetcher(config.DefaultConfig().Crawler)

	comments, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}

func TestFetchSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, commentPage)
	}))
	defer srv.Close()

	f := NewFetcher(config.DefaultConfig().Crawler)

	ds, session, err := f.FetchSession(context.Background(), srv.URL+"/video/7123456789")
	require.NoError(t, err)
	require.NotNil(t, ds)

	assert.Equal(t, "completed", session.Status)
	assert.Equal(t, 2, session.Collected)
	assert.Equal(t, "7123456789", session.VideoID)
	assert.Equal(t, "7123456789", ds.VideoInfo.VideoID)
	assert.NotEmpty(t, session.ID)
	assert.Len(t, ds.Comments, 2)
}

func TestFetchSession_MaxComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, commentPage)
	}))
	defer srv.Close()

	cfg := config.DefaultConfig().Crawler
	cfg.MaxComments = 1
	f := NewFetcher(cfg)

	ds, session, err := f.FetchSession(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, ds.Comments, 1)
	assert.Equal(t, 1, session.Collected)
}

func TestFetchSession_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher(config.DefaultConfig().Crawler)
	_, session, err := f.FetchSession(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Equal(t, "failed", session.Status)
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher(config.DefaultConfig().Crawler)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestIsDomainAllowed(t *testing.T) {
	cfg := config.DefaultConfig().Crawler
	cfg.AllowedDomains = []string{"douyin.com"}
	cfg.BlockedDomains = []string{"ads.douyin.com"}
	f := NewFetcher(cfg)

	assert.True(t, f.isDomainAllowed("https://www.douyin.com/video/1"))
	assert.False(t, f.isDomainAllowed("https://ads.douyin.com/banner"))
	assert.False(t, f.isDomainAllowed("https://example.com/"))

	// No allow list means everything not blocked passes
	open := NewFetcher(config.DefaultConfig().Crawler)
	assert.True(t, open.isDomainAllowed("https://example.com/"))
}
