// Package stats provides dataset cleaning, descriptive statistics, and
// outlier detection over structured comment records.
package stats

import (
	"fmt"
	"strings"

	"commentpulse/internal/types"
)

// CleanResult reports what cleaning removed.
type CleanResult struct {
	Before     int
	After      int
	Blank      int
	Duplicates int
}

// Clean drops fully-blank records, normalizes whitespace-only text to empty,
// and removes exact duplicates keeping the first occurrence.
func Clean(comments []types.Comment) ([]types.Comment, CleanResult) {
	result := CleanResult{Before: len(comments)}

	type key struct {
		author  string
		content string
		likes   int64
	}
	seen := make(map[key]struct{}, len(comments))

	out := make([]types.Comment, 0, len(comments))
	for _, c := range comments {
		c.Author = strings.TrimSpace(c.Author)
		c.Content = strings.TrimSpace(c.Content)

		if c.Author == "" && c.Content == "" && c.Likes == 0 {
			result.Blank++
			continue
		}

		k := key{author: c.Author, content: c.Content, likes: c.Likes}
		if _, dup := seen[k]; dup {
			result.Duplicates++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}

	result.After = len(out)
	return out, result
}

// Describe holds descriptive statistics for like counts.
type Describe struct {
	Count  int
	Sum    int64
	Mean   float64
	Median float64
	Std    float64
	Min    int64
	Max    int64
}

// DescribeLikes computes descriptive statistics over comment like counts.
func DescribeLikes(comments []types.Comment) Describe {
	d := Describe{Count: len(comments)}
	if len(comments) == 0 {
		return d
	}

	likes := make([]float64, len(comments))
	d.Min = comments[0].Likes
	d.Max = comments[0].Likes
	for i, c := range comments {
		likes[i] = float64(c.Likes)
		d.Sum += c.Likes
		if c.Likes < d.Min {
			d.Min = c.Likes
		}
		if c.Likes > d.Max {
			d.Max = c.Likes
		}
	}
	d.Mean = float64(d.Sum) / float64(len(comments))
	d.Median = median(likes)
	d.Std = stddev(likes, d.Mean)
	return d
}

// SummaryReport renders a plain-text overview of a cleaned dataset.
func SummaryReport(ds *types.Dataset) string {
	var b strings.Builder
	desc := DescribeLikes(ds.Comments)

	fmt.Fprintf(&b, "Comments:       %d\n", len(ds.Comments))
	fmt.Fprintf(&b, "Unique authors: %d\n", ds.UniqueAuthors())
	if ds.VideoInfo.VideoID != "" {
		fmt.Fprintf(&b, "Video:          %s\n", ds.VideoInfo.VideoID)
	}
	if desc.Count > 0 {
		fmt.Fprintf(&b, "Total likes:    %d\n", desc.Sum)
		fmt.Fprintf(&b, "Mean likes:     %.1f\n", desc.Mean)
		fmt.Fprintf(&b, "Median likes:   %.1f\n", desc.Median)
		fmt.Fprintf(&b, "Like range:     %d ~ %d\n", desc.Min, desc.Max)
	}

	first, last := timeRange(ds.Comments)
	if first != "" {
		fmt.Fprintf(&b, "Time range:     %s ~ %s\n", first, last)
	}

	return b.String()
}

func timeRange(comments []types.Comment) (first, last string) {
	for _, c := range comments {
		if c.PostedAt == "" {
			continue
		}
		if first == "" || c.PostedAt < first {
			first = c.PostedAt
		}
		if c.PostedAt > last {
			last = c.PostedAt
		}
	}
	return first, last
}
