// Package config loads and validates commentpulse configuration.
// Configuration lives in .pulse/config.yaml under the workspace; missing
// files fall back to defaults so the tool works out of the box.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all commentpulse configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Crawler settings
	Crawler CrawlerConfig `yaml:"crawler"`

	// Analysis settings
	Analysis AnalysisConfig `yaml:"analysis"`

	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Export settings
	Export ExportConfig `yaml:"export"`

	// Watch settings
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// CrawlerConfig configures the browser crawler and the HTTP fallback fetcher.
type CrawlerConfig struct {
	Headless          bool     `yaml:"headless"`
	BrowserBin        string   `yaml:"browser_bin"`
	DebuggerURL       string   `yaml:"debugger_url"`
	ViewportWidth     int      `yaml:"viewport_width"`
	ViewportHeight    int      `yaml:"viewport_height"`
	UserAgent         string   `yaml:"user_agent"`
	NavigationTimeout string   `yaml:"navigation_timeout"`
	ScrollRounds      int      `yaml:"scroll_rounds"`
	ScrollPause       string   `yaml:"scroll_pause"`
	MaxComments       int      `yaml:"max_comments"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	AllowedDomains    []string `yaml:"allowed_domains"`
	BlockedDomains    []string `yaml:"blocked_domains"`
}

// AnalysisConfig configures sentiment and text mining.
type AnalysisConfig struct {
	TopWords          int     `yaml:"top_words"`
	HotTopicMinCount  int     `yaml:"hot_topic_min_count"`
	PositiveThreshold float64 `yaml:"positive_threshold"`
	NegativeThreshold float64 `yaml:"negative_threshold"`
	StopwordsFile     string  `yaml:"stopwords_file"`
	LexiconFile       string  `yaml:"lexicon_file"`
	OutlierMethod     string  `yaml:"outlier_method"` // iqr, zscore
	OutlierThreshold  float64 `yaml:"outlier_threshold"`
}

// StorageConfig configures SQLite persistence.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	DataDir      string `yaml:"data_dir"`
}

// ExportConfig configures report generation.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	ChartsDir string `yaml:"charts_dir"`
	TopN      int    `yaml:"top_n"`
}

// WatchConfig configures the inbox watcher.
type WatchConfig struct {
	InboxDir string `yaml:"inbox_dir"`
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level     string `yaml:"level"`  // debug, info, warn, error
	Format    string `yaml:"format"` // json, text
	DebugMode bool   `yaml:"debug_mode"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "commentpulse",
		Version: "0.1.0",

		Crawler: CrawlerConfig{
			Headless:          true,
			ViewportWidth:     1920,
			ViewportHeight:    1080,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			NavigationTimeout: "30s",
			ScrollRounds:      20,
			ScrollPause:       "800ms",
			MaxComments:       2000,
			RequestsPerSecond: 1.0,
		},

		Analysis: AnalysisConfig{
			TopWords:          20,
			HotTopicMinCount:  5,
			PositiveThreshold: 0.1,
			NegativeThreshold: -0.1,
			OutlierMethod:     "iqr",
			OutlierThreshold:  1.5,
		},

		Storage: StorageConfig{
			DatabasePath: ".pulse/data/commentpulse.db",
			DataDir:      "output/data",
		},

		Export: ExportConfig{
			OutputDir: "output",
			ChartsDir: "output/charts",
			TopN:      10,
		},

		Watch: WatchConfig{
			InboxDir: "output/data",
			Debounce: "500ms",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("PULSE_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if dir := os.Getenv("PULSE_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
		c.Watch.InboxDir = dir
	}
	if dir := os.Getenv("PULSE_OUTPUT_DIR"); dir != "" {
		c.Export.OutputDir = dir
	}
	if url := os.Getenv("PULSE_DEBUGGER_URL"); url != "" {
		c.Crawler.DebuggerURL = url
	}
	if ua := os.Getenv("PULSE_USER_AGENT"); ua != "" {
		c.Crawler.UserAgent = ua
	}
	if lvl := os.Getenv("PULSE_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

// GetNavigationTimeout returns the crawler navigation timeout as a duration.
func (c *Config) GetNavigationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Crawler.NavigationTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetScrollPause returns the pause between comment feed scrolls.
func (c *Config) GetScrollPause() time.Duration {
	d, err := time.ParseDuration(c.Crawler.ScrollPause)
	if err != nil {
		return 800 * time.Millisecond
	}
	return d
}

// GetWatchDebounce returns the inbox watcher debounce window.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// ValidOutlierMethods lists supported outlier detection methods.
var ValidOutlierMethods = []string{"iqr", "zscore"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Analysis.PositiveThreshold <= c.Analysis.NegativeThreshold {
		return fmt.Errorf("positive threshold %.2f must exceed negative threshold %.2f",
			c.Analysis.PositiveThreshold, c.Analysis.NegativeThreshold)
	}
	if c.Analysis.TopWords <= 0 {
		return fmt.Errorf("top_words must be positive, got %d", c.Analysis.TopWords)
	}

	valid := false
	for _, m := range ValidOutlierMethods {
		if c.Analysis.OutlierMethod == m {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid outlier method: %s (valid: %v)", c.Analysis.OutlierMethod, ValidOutlierMethods)
	}

	if c.Crawler.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive, got %.2f", c.Crawler.RequestsPerSecond)
	}

	return nil
}

// ConfigPath returns the default config path under a workspace.
func ConfigPath(workspace string) string {
	return filepath.Join(workspace, ".pulse", "config.yaml")
}
