package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"commentpulse/internal/logging"
	"commentpulse/internal/mining"
	"commentpulse/internal/sentiment"
	"commentpulse/internal/types"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartSet renders the analysis charts as standalone HTML files.
type ChartSet struct {
	outputDir string
}

// NewChartSet creates a chart renderer writing into outputDir.
func NewChartSet(outputDir string) *ChartSet {
	return &ChartSet{outputDir: outputDir}
}

// GenerateAll renders every chart that has data and returns the written
// file paths.
func (cs *ChartSet) GenerateAll(ds *types.Dataset, miningResult *mining.Result, topN int) ([]string, error) {
	timer := logging.StartTimer(logging.CategoryExport, "GenerateAll")
	defer timer.Stop()

	if err := os.MkdirAll(cs.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create charts directory: %w", err)
	}

	var files []string

	if path, err := cs.TopComments(ds, topN); err != nil {
		return files, err
	} else if path != "" {
		files = append(files, path)
	}

	if path, err := cs.ActiveUsers(ds, topN); err != nil {
		return files, err
	} else if path != "" {
		files = append(files, path)
	}

	if path, err := cs.SentimentDistribution(ds); err != nil {
		return files, err
	} else if path != "" {
		files = append(files, path)
	}

	if miningResult != nil {
		if path, err := cs.WordFrequency(miningResult, topN*2); err != nil {
			return files, err
		} else if path != "" {
			files = append(files, path)
		}

		if path, err := cs.Wordcloud(miningResult); err != nil {
			return files, err
		} else if path != "" {
			files = append(files, path)
		}
	}

	logging.Export("generated %d charts in %s", len(files), cs.outputDir)
	return files, nil
}

// TopComments renders a bar chart of the most-liked comments.
func (cs *ChartSet) TopComments(ds *types.Dataset, topN int) (string, error) {
	top := ds.TopByLikes(topN)
	if len(top) == 0 {
		return "", nil
	}

	var authors []string
	var data []opts.BarData
	for _, c := range top {
		authors = append(authors, c.Author)
		data = append(data, opts.BarData{Value: c.Likes})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("热门评论 TOP%d", len(top)),
			Subtitle: "按点赞数排序",
		}),
	)
	bar.SetXAxis(authors).AddSeries("点赞数", data)

	return cs.render(bar, "top_comments")
}

// ActiveUsers renders a bar chart of the most frequent commenters.
func (cs *ChartSet) ActiveUsers(ds *types.Dataset, topN int) (string, error) {
	counts := make(map[string]int)
	for _, c := range ds.Comments {
		if c.Author != "" {
			counts[c.Author]++
		}
	}
	if len(counts) == 0 {
		return "", nil
	}

	type userCount struct {
		name  string
		count int
	}
	users := make([]userCount, 0, len(counts))
	for name, count := range counts {
		users = append(users, userCount{name, count})
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].count != users[j].count {
			return users[i].count > users[j].count
		}
		return users[i].name < users[j].name
	})
	if topN > 0 && topN < len(users) {
		users = users[:topN]
	}

	var names []string
	var data []opts.BarData
	for _, u := range users {
		names = append(names, u.name)
		data = append(data, opts.BarData{Value: u.count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("活跃用户 TOP%d", len(users)),
			Subtitle: "按评论数排序",
		}),
	)
	bar.SetXAxis(names).AddSeries("评论数", data)

	return cs.render(bar, "active_users")
}

// SentimentDistribution renders a pie chart of sentiment labels.
func (cs *ChartSet) SentimentDistribution(ds *types.Dataset) (string, error) {
	summary := sentiment.Summarize(ds.Comments)
	total := summary.Positive + summary.Negative + summary.Neutral
	if total == 0 {
		return "", nil
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "评论情感分布"}),
	)
	pie.AddSeries("情感", []opts.PieData{
		{Name: "积极", Value: summary.Positive},
		{Name: "中性", Value: summary.Neutral},
		{Name: "消极", Value: summary.Negative},
	})

	return cs.render(pie, "sentiment")
}

// WordFrequency renders a bar chart of top terms.
func (cs *ChartSet) WordFrequency(result *mining.Result, topN int) (string, error) {
	words := result.TopWords
	if topN > 0 && topN < len(words) {
		words = words[:topN]
	}
	if len(words) == 0 {
		return "", nil
	}

	var terms []string
	var data []opts.BarData
	for _, wc := range words {
		terms = append(terms, wc.Word)
		data = append(data, opts.BarData{Value: wc.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("高频词汇 TOP%d", len(words)),
		}),
	)
	bar.SetXAxis(terms).AddSeries("出现次数", data)

	return cs.render(bar, "word_frequency")
}

// Wordcloud renders terms occurring at least twice as a word cloud.
func (cs *ChartSet) Wordcloud(result *mining.Result) (string, error) {
	var data []opts.WordCloudData
	for word, count := range result.AllCounts {
		if count >= 2 {
			data = append(data, opts.WordCloudData{Name: word, Value: count})
		}
	}
	if len(data) == 0 {
		return "", nil
	}

	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "评论词云"}),
	)
	wc.AddSeries("词云", data)

	return cs.render(wc, "wordcloud")
}

type renderable interface {
	Render(w io.Writer) error
}

func (cs *ChartSet) render(chart renderable, base string) (string, error) {
	filename := fmt.Sprintf("%s_%s.html", base, time.Now().Format("20060102_150405"))
	path := filepath.Join(cs.outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	return path, nil
}
