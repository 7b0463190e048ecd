// Package store persists crawled comments and analysis results in SQLite.
//
// Tables:
//   - comments:       structured comment records keyed by video
//   - crawl_sessions: one row per crawler run
//   - analysis_runs:  one row per full-analysis pass with aggregate results
//   - word_stats:     per-run top term frequencies
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"commentpulse/internal/logging"
	"commentpulse/internal/types"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open initializes the SQLite database at the given path.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	logging.Store("Opening store at path: %s", path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	// PRAGMA synchronous=NORMAL is safe with WAL and much faster than FULL.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Store initialization complete")
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	commentsTable := `
	CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id TEXT NOT NULL,
		author TEXT NOT NULL,
		content TEXT NOT NULL,
		likes INTEGER DEFAULT 0,
		posted_at TEXT,
		sentiment_score REAL,
		sentiment_label TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(video_id, author, content, posted_at)
	);
	CREATE INDEX IF NOT EXISTS idx_comments_video ON comments(video_id);
	CREATE INDEX IF NOT EXISTS idx_comments_label ON comments(sentiment_label);
	CREATE INDEX IF NOT EXISTS idx_comments_likes ON comments(likes);
	`

	crawlSessionsTable := `
	CREATE TABLE IF NOT EXISTS crawl_sessions (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		video_id TEXT,
		comment_count INTEGER DEFAULT 0,
		status TEXT DEFAULT 'completed',
		dump_path TEXT,
		started_at DATETIME,
		finished_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_video ON crawl_sessions(video_id);
	`

	analysisRunsTable := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		video_id TEXT,
		source_path TEXT,
		comment_count INTEGER DEFAULT 0,
		positive INTEGER DEFAULT 0,
		negative INTEGER DEFAULT 0,
		neutral INTEGER DEFAULT 0,
		mean_score REAL,
		total_words INTEGER DEFAULT 0,
		unique_words INTEGER DEFAULT 0,
		hot_topics_json TEXT,
		report_path TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_runs_video ON analysis_runs(video_id);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON analysis_runs(created_at);
	`

	wordStatsTable := `
	CREATE TABLE IF NOT EXISTS word_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		word TEXT NOT NULL,
		count INTEGER NOT NULL,
		rank INTEGER NOT NULL,
		UNIQUE(run_id, word)
	);
	CREATE INDEX IF NOT EXISTS idx_word_stats_run ON word_stats(run_id);
	`

	for _, table := range []string{
		commentsTable,
		crawlSessionsTable,
		analysisRunsTable,
		wordStatsTable,
	} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	logging.Store("Closing store database connection")
	return s.db.Close()
}

// GetDB returns the underlying SQL database connection.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// UpsertComments inserts comments for a video, updating sentiment columns on
// conflict. Returns the number of rows written.
func (s *Store) UpsertComments(videoID string, comments []types.Comment) (int, error) {
	timer := logging.StartTimer(logging.CategoryStore, "UpsertComments")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO comments (video_id, author, content, likes, posted_at, sentiment_score, sentiment_label)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id, author, content, posted_at) DO UPDATE SET
			likes = excluded.likes,
			sentiment_score = excluded.sentiment_score,
			sentiment_label = excluded.sentiment_label`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, c := range comments {
		var score, label interface{}
		if c.SentimentLabel != "" {
			score, label = c.SentimentScore, c.SentimentLabel
		}
		if _, err := stmt.Exec(videoID, c.Author, c.Content, c.Likes, c.PostedAt, score, label); err != nil {
			return written, fmt.Errorf("upsert comment: %w", err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return written, fmt.Errorf("commit: %w", err)
	}

	logging.StoreDebug("upserted %d comments for video %s", written, videoID)
	return written, nil
}

// CommentsByVideo loads all stored comments for a video, most liked first.
func (s *Store) CommentsByVideo(videoID string) ([]types.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT author, content, likes, COALESCE(posted_at, ''),
		       COALESCE(sentiment_score, 0), COALESCE(sentiment_label, '')
		FROM comments WHERE video_id = ? ORDER BY likes DESC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []types.Comment
	for rows.Next() {
		var c types.Comment
		if err := rows.Scan(&c.Author, &c.Content, &c.Likes, &c.PostedAt,
			&c.SentimentScore, &c.SentimentLabel); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CrawlSession records a completed crawler run.
type CrawlSession struct {
	ID           string
	URL          string
	VideoID      string
	CommentCount int
	Status       string
	DumpPath     string
	StartedAt    time.Time
}

// RecordCrawlSession persists a crawl session row.
func (s *Store) RecordCrawlSession(session CrawlSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO crawl_sessions (id, url, video_id, comment_count, status, dump_path, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.URL, session.VideoID, session.CommentCount,
		session.Status, session.DumpPath, session.StartedAt)
	if err != nil {
		return fmt.Errorf("record crawl session: %w", err)
	}
	return nil
}

// AnalysisRun records the aggregate output of one full-analysis pass.
type AnalysisRun struct {
	ID           string
	VideoID      string
	SourcePath   string
	CommentCount int
	Positive     int
	Negative     int
	Neutral      int
	MeanScore    float64
	TotalWords   int
	UniqueWords  int
	HotTopics    interface{} // serialized to JSON
	ReportPath   string
}

// RecordAnalysisRun persists an analysis run and its word stats.
func (s *Store) RecordAnalysisRun(run AnalysisRun, topWords []WordStat) error {
	timer := logging.StartTimer(logging.CategoryStore, "RecordAnalysisRun")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	topicsJSON, err := json.Marshal(run.HotTopics)
	if err != nil {
		return fmt.Errorf("marshal hot topics: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO analysis_runs
			(id, video_id, source_path, comment_count, positive, negative, neutral,
			 mean_score, total_words, unique_words, hot_topics_json, report_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.VideoID, run.SourcePath, run.CommentCount,
		run.Positive, run.Negative, run.Neutral, run.MeanScore,
		run.TotalWords, run.UniqueWords, string(topicsJSON), run.ReportPath)
	if err != nil {
		return fmt.Errorf("insert analysis run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO word_stats (run_id, word, count, rank) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare word stats: %w", err)
	}
	defer stmt.Close()

	for i, w := range topWords {
		if _, err := stmt.Exec(run.ID, w.Word, w.Count, i+1); err != nil {
			return fmt.Errorf("insert word stat: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logging.StoreDebug("recorded analysis run %s (%d comments, %d top words)",
		run.ID, run.CommentCount, len(topWords))
	return nil
}

// WordStat is one persisted term frequency.
type WordStat struct {
	Word  string
	Count int
}

// TopWordsForRun loads the persisted top terms of a run, by rank.
func (s *Store) TopWordsForRun(runID string) ([]WordStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT word, count FROM word_stats WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("query word stats: %w", err)
	}
	defer rows.Close()

	var stats []WordStat
	for rows.Next() {
		var w WordStat
		if err := rows.Scan(&w.Word, &w.Count); err != nil {
			return nil, fmt.Errorf("scan word stat: %w", err)
		}
		stats = append(stats, w)
	}
	return stats, rows.Err()
}

// LastCrawlSession returns the most recent crawl session, or nil when none.
func (s *Store) LastCrawlSession() (*CrawlSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, url, COALESCE(video_id, ''), comment_count,
		       COALESCE(status, ''), COALESCE(dump_path, ''), started_at
		FROM crawl_sessions ORDER BY finished_at DESC LIMIT 1`)

	var session CrawlSession
	err := row.Scan(&session.ID, &session.URL, &session.VideoID, &session.CommentCount,
		&session.Status, &session.DumpPath, &session.StartedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last session: %w", err)
	}
	return &session, nil
}

// LastAnalysisRun returns the most recent analysis run, or nil when none.
func (s *Store) LastAnalysisRun() (*AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, COALESCE(video_id, ''), COALESCE(source_path, ''), comment_count,
		       positive, negative, neutral, COALESCE(mean_score, 0),
		       total_words, unique_words, COALESCE(report_path, '')
		FROM analysis_runs ORDER BY created_at DESC LIMIT 1`)

	var run AnalysisRun
	err := row.Scan(&run.ID, &run.VideoID, &run.SourcePath, &run.CommentCount,
		&run.Positive, &run.Negative, &run.Neutral, &run.MeanScore,
		&run.TotalWords, &run.UniqueWords, &run.ReportPath)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	return &run, nil
}

// GetStats returns row counts per table.
func (s *Store) GetStats() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int64)
	for _, table := range []string{"comments", "crawl_sessions", "analysis_runs", "word_stats"} {
		var count int64
		if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			logging.StoreDebug("Table %s count failed: %v", table, err)
			continue
		}
		stats[table] = count
	}
	return stats, nil
}
