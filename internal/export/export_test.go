package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"commentpulse/internal/mining"
	"commentpulse/internal/sentiment"
	"commentpulse/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testDataset() *types.Dataset {
	return &types.Dataset{
		VideoInfo: types.VideoInfo{VideoID: "7123", Title: "测试视频"},
		Comments: []types.Comment{
			{Author: "小明", Content: "画面太好看了", Likes: 120, SentimentScore: 0.6, SentimentLabel: sentiment.LabelPositive},
			{Author: "小红", Content: "一般般", Likes: 3, SentimentScore: 0, SentimentLabel: sentiment.LabelNeutral},
			{Author: "路人", Content: "不喜欢", Likes: 8, SentimentScore: -0.4, SentimentLabel: sentiment.LabelNegative},
		},
	}
}

func testMining() *mining.Result {
	return &mining.Result{
		TopWords:    []mining.WordCount{{Word: "画面", Count: 5}, {Word: "音乐", Count: 3}},
		TotalWords:  20,
		UniqueWords: 12,
		AllCounts:   map[string]int{"画面": 5, "音乐": 3, "一次": 1},
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "analysis.xlsx")

	require.NoError(t, WriteWorkbook(path, testDataset(), testMining(), 2))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{"原始数据", "热门评论", "情感分析", "词频统计"} {
		assert.Contains(t, sheets, want)
	}
	assert.NotContains(t, sheets, "Sheet1")

	// Raw sheet: header plus one row per comment
	rows, err := f.GetRows("原始数据")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "作者", rows[0][0])
	assert.Equal(t, "小明", rows[1][0])
	assert.Equal(t, "积极", rows[1][5])

	// Top sheet limited to topN
	rows, err = f.GetRows("热门评论")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "小明", rows[1][0]) // most liked first

	// Word sheet
	rows, err = f.GetRows("词频统计")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "画面", rows[1][0])
}

func TestWriteWorkbook_NoMining(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.xlsx")
	require.NoError(t, WriteWorkbook(path, testDataset(), nil, 10))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.NotContains(t, f.GetSheetList(), "词频统计")
}

func TestTruncateSheetName(t *testing.T) {
	long := strings.Repeat("长", 40)
	got := truncateSheetName(long)
	assert.Len(t, []rune(got), 31)
	assert.Equal(t, "short", truncateSheetName("short"))
}

func TestLabelZH(t *testing.T) {
	assert.Equal(t, "积极", labelZH(sentiment.LabelPositive))
	assert.Equal(t, "消极", labelZH(sentiment.LabelNegative))
	assert.Equal(t, "中性", labelZH(sentiment.LabelNeutral))
	assert.Equal(t, "", labelZH(""))
}

func TestChartSet_GenerateAll(t *testing.T) {
	dir := t.TempDir()
	cs := NewChartSet(dir)

	files, err := cs.GenerateAll(testDataset(), testMining(), 10)
	require.NoError(t, err)
	// top comments, active users, sentiment pie, word frequency, wordcloud
	assert.Len(t, files, 5)

	for _, path := range files {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, ".html"))
		assert.Contains(t, string(data), "echarts")
	}
}

func TestChartSet_EmptyDataset(t *testing.T) {
	cs := NewChartSet(t.TempDir())

	files, err := cs.GenerateAll(&types.Dataset{}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestReport_RenderAndSave(t *testing.T) {
	r := &Report{
		Dataset:    testDataset(),
		SourcePath: "data/dump.json",
		Summary:    sentiment.Summarize(testDataset().Comments),
		Mining:     testMining(),
		HotTopics: []mining.HotTopic{
			{Keyword: "画面", Count: 5, RelatedComments: 4},
		},
		Workbook: "output/analysis.xlsx",
		Charts:   []string{"a.html", "b.html"},
	}

	text := r.Render()
	assert.Contains(t, text, "评论分析报告")
	assert.Contains(t, text, "评论总数: 3 条")
	assert.Contains(t, text, "积极评论: 1 条")
	assert.Contains(t, text, "画面 (出现5次, 相关评论4条)")
	assert.Contains(t, text, "图表数量: 2 个")

	dir := t.TempDir()
	path, err := r.Save(dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "analysis_report_"))

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "评论分析报告")
}
