// Package pipeline orchestrates the full analysis pass: clean the dataset,
// score sentiment, mine terms and topics, persist results, and export the
// workbook, charts, and text report.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"commentpulse/internal/config"
	"commentpulse/internal/export"
	"commentpulse/internal/logging"
	"commentpulse/internal/mining"
	"commentpulse/internal/segment"
	"commentpulse/internal/sentiment"
	"commentpulse/internal/stats"
	"commentpulse/internal/store"
	"commentpulse/internal/types"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Pipeline wires the analysis stages together.
type Pipeline struct {
	cfg       *config.Config
	segmenter *segment.Segmenter
	analyzer  *sentiment.Analyzer
	miner     *mining.Miner
	store     *store.Store // optional; nil disables persistence
}

// Result is the output of one full analysis pass.
type Result struct {
	RunID      string
	Dataset    *types.Dataset
	CleanStats stats.CleanResult
	Summary    sentiment.Summary
	Mining     *mining.Result
	HotTopics  []mining.HotTopic
	Workbook   string
	Charts     []string
	ReportPath string
	ReportText string
}

// New builds a pipeline from config. The store may be nil for one-shot
// analysis without persistence.
func New(cfg *config.Config, st *store.Store) (*Pipeline, error) {
	seg, err := segment.New()
	if err != nil {
		return nil, fmt.Errorf("init segmenter: %w", err)
	}
	if err := seg.LoadStopwords(cfg.Analysis.StopwordsFile); err != nil {
		return nil, fmt.Errorf("load stopwords: %w", err)
	}

	lexicon := sentiment.DefaultLexicon()
	if err := lexicon.LoadLexiconFile(cfg.Analysis.LexiconFile); err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	analyzer := sentiment.NewAnalyzer(seg,
		sentiment.WithLexicon(lexicon),
		sentiment.WithThresholds(cfg.Analysis.PositiveThreshold, cfg.Analysis.NegativeThreshold),
	)

	return &Pipeline{
		cfg:       cfg,
		segmenter: seg,
		analyzer:  analyzer,
		miner:     mining.NewMiner(seg),
		store:     st,
	}, nil
}

// AnalyzeFile runs the basic analysis: load, clean, describe. No persistence
// or export.
func (p *Pipeline) AnalyzeFile(path string) (*types.Dataset, stats.CleanResult, error) {
	ds, err := types.LoadDataset(path)
	if err != nil {
		return nil, stats.CleanResult{}, err
	}

	cleaned, cleanStats := stats.Clean(ds.Comments)
	ds.Comments = cleaned
	return ds, cleanStats, nil
}

// RunFile executes the full pipeline on a dump file.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Result, error) {
	ds, cleanStats, err := p.AnalyzeFile(path)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, ds, cleanStats, path)
}

// Run executes the full pipeline on a loaded, cleaned dataset.
func (p *Pipeline) Run(ctx context.Context, ds *types.Dataset, cleanStats stats.CleanResult, sourcePath string) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryPipeline, "Run")
	defer timer.Stop()

	result := &Result{
		RunID:      uuid.NewString(),
		Dataset:    ds,
		CleanStats: cleanStats,
	}

	// Sentiment mutates comments in place; mining and topics read content
	// only, so the three can run concurrently over the same slice.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.analyzer.AnalyzeComments(ds.Comments)
		return ctx.Err()
	})
	g.Go(func() error {
		result.Mining = p.miner.Analyze(ds.Comments, p.cfg.Analysis.TopWords)
		return ctx.Err()
	})
	g.Go(func() error {
		result.HotTopics = p.miner.HotTopics(ds.Comments, p.cfg.Analysis.HotTopicMinCount)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Summary = sentiment.Summarize(ds.Comments)

	// Export
	workbook := filepath.Join(p.cfg.Export.OutputDir, types.TimestampedFilename("full_analysis", "xlsx"))
	if err := export.WriteWorkbook(workbook, ds, result.Mining, p.cfg.Export.TopN); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	result.Workbook = workbook

	charts, err := export.NewChartSet(p.cfg.Export.ChartsDir).GenerateAll(ds, result.Mining, p.cfg.Export.TopN)
	if err != nil {
		return nil, fmt.Errorf("generate charts: %w", err)
	}
	result.Charts = charts

	report := &export.Report{
		Dataset:    ds,
		SourcePath: sourcePath,
		Summary:    result.Summary,
		Mining:     result.Mining,
		HotTopics:  result.HotTopics,
		Workbook:   workbook,
		Charts:     charts,
	}
	result.ReportText = report.Render()
	reportPath, err := report.Save(p.cfg.Export.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	result.ReportPath = reportPath

	// Persist
	if p.store != nil {
		if err := p.persist(result, sourcePath); err != nil {
			return nil, err
		}
	}

	logging.Pipeline("run %s complete: %d comments, %d charts", result.RunID, len(ds.Comments), len(charts))
	return result, nil
}

func (p *Pipeline) persist(result *Result, sourcePath string) error {
	videoID := result.Dataset.VideoInfo.VideoID

	if _, err := p.store.UpsertComments(videoID, result.Dataset.Comments); err != nil {
		return fmt.Errorf("persist comments: %w", err)
	}

	topWords := make([]store.WordStat, 0, len(result.Mining.TopWords))
	for _, wc := range result.Mining.TopWords {
		topWords = append(topWords, store.WordStat{Word: wc.Word, Count: wc.Count})
	}

	run := store.AnalysisRun{
		ID:           result.RunID,
		VideoID:      videoID,
		SourcePath:   sourcePath,
		CommentCount: len(result.Dataset.Comments),
		Positive:     result.Summary.Positive,
		Negative:     result.Summary.Negative,
		Neutral:      result.Summary.Neutral,
		MeanScore:    result.Summary.MeanScore,
		TotalWords:   result.Mining.TotalWords,
		UniqueWords:  result.Mining.UniqueWords,
		HotTopics:    result.HotTopics,
		ReportPath:   result.ReportPath,
	}
	if err := p.store.RecordAnalysisRun(run, topWords); err != nil {
		return fmt.Errorf("persist analysis run: %w", err)
	}
	return nil
}
