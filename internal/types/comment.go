// Package types defines the core data model shared across commentpulse:
// comment records, video metadata, and the on-disk dump format produced by
// the crawler and consumed by the analysis pipeline.
package types

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Comment is a single structured comment record.
type Comment struct {
	Author   string `json:"author"`
	Content  string `json:"content"`
	Likes    int64  `json:"likes"`
	PostedAt string `json:"posted_at,omitempty"`

	// Filled in by the sentiment analyzer; zero until analyzed.
	SentimentScore float64 `json:"sentiment_score,omitempty"`
	SentimentLabel string  `json:"sentiment_label,omitempty"`
}

// legacyComment mirrors the Chinese key names used by older dump files.
// Both layouts are accepted on load.
type legacyComment struct {
	Author   *string         `json:"用户"`
	Content  *string         `json:"内容"`
	Likes    json.RawMessage `json:"点赞数"`
	PostedAt *string         `json:"时间"`
}

// UnmarshalJSON accepts both the native layout and the legacy Chinese-keyed
// layout, and tolerates like counts encoded as strings ("1.2万" style counts
// are parsed by ParseLikeCount).
func (c *Comment) UnmarshalJSON(data []byte) error {
	type native Comment
	var n native
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Comment(n)

	var legacy legacyComment
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil // native layout already applied
	}
	if legacy.Author != nil {
		c.Author = *legacy.Author
	}
	if legacy.Content != nil {
		c.Content = *legacy.Content
	}
	if legacy.PostedAt != nil {
		c.PostedAt = *legacy.PostedAt
	}
	if len(legacy.Likes) > 0 {
		if likes, ok := decodeLikes(legacy.Likes); ok {
			c.Likes = likes
		}
	}
	return nil
}

func decodeLikes(raw json.RawMessage) (int64, bool) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int64(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if likes, err := ParseLikeCount(s); err == nil {
			return likes, true
		}
	}
	return 0, false
}

// ParseLikeCount parses a like counter as displayed in the comment feed.
// Supports plain integers and the abbreviated 万 (10^4) / 亿 (10^8) forms,
// e.g. "1.2万" -> 12000.
func ParseLikeCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "万"):
		multiplier = 10_000
		s = strings.TrimSuffix(s, "万")
	case strings.HasSuffix(s, "亿"):
		multiplier = 100_000_000
		s = strings.TrimSuffix(s, "亿")
	case strings.HasSuffix(s, "w"), strings.HasSuffix(s, "W"):
		multiplier = 10_000
		s = s[:len(s)-1]
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse like count %q: %w", s, err)
	}
	return int64(f * float64(multiplier)), nil
}

// VideoInfo describes the video a dump was collected from.
type VideoInfo struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	URL       string `json:"url,omitempty"`
	CrawledAt string `json:"crawled_at,omitempty"`
}

// Dataset is the on-disk dump format: one video plus its comments.
type Dataset struct {
	VideoInfo VideoInfo `json:"video_info"`
	Comments  []Comment `json:"comments"`
}

// LoadDataset reads and validates a comment dump from disk.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dump %s: %w", filepath.Base(path), err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dump %s: %w", filepath.Base(path), err)
	}
	return &ds, nil
}

// Save writes the dataset as indented JSON, creating parent directories.
func (d *Dataset) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dump directory: %w", err)
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dump: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	return nil
}

// Validate checks structural invariants of a loaded dump.
func (d *Dataset) Validate() error {
	if d.Comments == nil {
		return fmt.Errorf("missing comments array")
	}
	for i, c := range d.Comments {
		if c.Likes < 0 {
			return fmt.Errorf("comment %d: negative like count %d", i, c.Likes)
		}
	}
	return nil
}

// TopByLikes returns up to n comments sorted by like count, descending.
// The receiver is not modified.
func (d *Dataset) TopByLikes(n int) []Comment {
	sorted := make([]Comment, len(d.Comments))
	copy(sorted, d.Comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Likes > sorted[j].Likes
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// UniqueAuthors returns the number of distinct comment authors.
func (d *Dataset) UniqueAuthors() int {
	seen := make(map[string]struct{}, len(d.Comments))
	for _, c := range d.Comments {
		seen[c.Author] = struct{}{}
	}
	return len(seen)
}

// TimestampedFilename builds a dump filename carrying the current time,
// e.g. "comments_20240101_103000.json".
func TimestampedFilename(base, ext string) string {
	return fmt.Sprintf("%s_%s.%s", base, time.Now().Format("20060102_150405"), ext)
}
