package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"commentpulse/internal/config"
	"commentpulse/internal/store"
	"commentpulse/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.DatabasePath = filepath.Join(dir, "test.db")
	cfg.Storage.DataDir = filepath.Join(dir, "data")
	cfg.Export.OutputDir = filepath.Join(dir, "output")
	cfg.Export.ChartsDir = filepath.Join(dir, "charts")
	return cfg
}

func writeDump(t *testing.T, dir string) string {
	t.Helper()
	ds := &types.Dataset{
		VideoInfo: types.VideoInfo{VideoID: "7123", Title: "测试视频"},
		Comments: []types.Comment{
			{Author: "小明", Content: "画面非常好看，太棒了", Likes: 120},
			{Author: "小红", Content: "画面不错，音乐也好听", Likes: 30},
			{Author: "小刚", Content: "太差了，不喜欢", Likes: 2},
			{Author: "小明", Content: "画面非常好看，太棒了", Likes: 120}, // duplicate
			{Author: "", Content: "  ", Likes: 0},                 // blank
		},
	}
	path := filepath.Join(dir, "dump.json")
	require.NoError(t, ds.Save(path))
	return path
}

func TestPipeline_RunFile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping dictionary load in short mode")
	}

	cfg := testConfig(t)
	p, err := New(cfg, nil)
	require.NoError(t, err)

	dump := writeDump(t, t.TempDir())
	result, err := p.RunFile(context.Background(), dump)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)

	// Cleaning removed the duplicate and the blank record
	assert.Equal(t, 5, result.CleanStats.Before)
	assert.Equal(t, 3, result.CleanStats.After)
	assert.Len(t, result.Dataset.Comments, 3)

	// Every comment carries a label after the run
	for _, c := range result.Dataset.Comments {
		assert.NotEmpty(t, c.SentimentLabel)
	}
	total := result.Summary.Positive + result.Summary.Negative + result.Summary.Neutral
	assert.Equal(t, 3, total)

	require.NotNil(t, result.Mining)
	assert.Greater(t, result.Mining.TotalWords, 0)

	// Exports land on disk
	assert.FileExists(t, result.Workbook)
	assert.FileExists(t, result.ReportPath)
	assert.NotEmpty(t, result.Charts)
	for _, chart := range result.Charts {
		assert.FileExists(t, chart)
	}
	assert.Contains(t, result.ReportText, "评论分析报告")
}

func TestPipeline_RunFilePersists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping dictionary load in short mode")
	}

	cfg := testConfig(t)
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	p, err := New(cfg, st)
	require.NoError(t, err)

	dump := writeDump(t, t.TempDir())
	result, err := p.RunFile(context.Background(), dump)
	require.NoError(t, err)

	run, err := st.LastAnalysisRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, result.RunID, run.ID)
	assert.Equal(t, "7123", run.VideoID)
	assert.Equal(t, 3, run.CommentCount)

	words, err := st.TopWordsForRun(run.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, words)

	stored, err := st.CommentsByVideo("7123")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestPipeline_AnalyzeFile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping dictionary load in short mode")
	}

	cfg := testConfig(t)
	p, err := New(cfg, nil)
	require.NoError(t, err)

	dump := writeDump(t, t.TempDir())
	ds, cleanStats, err := p.AnalyzeFile(dump)
	require.NoError(t, err)
	assert.Len(t, ds.Comments, 3)
	assert.Equal(t, 1, cleanStats.Duplicates)
	assert.Equal(t, 1, cleanStats.Blank)
}

func TestPipeline_RunFileMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping dictionary load in short mode")
	}

	cfg := testConfig(t)
	p, err := New(cfg, nil)
	require.NoError(t, err)

	_, err = p.RunFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)

	_, _, err = p.AnalyzeFile(filepath.Join(t.TempDir(), "also-missing.json"))
	assert.Error(t, err)
}
