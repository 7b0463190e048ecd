package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "commentpulse" {
		t.Errorf("expected Name=commentpulse, got %s", cfg.Name)
	}
	if !cfg.Crawler.Headless {
		t.Error("expected Headless=true by default")
	}
	if cfg.Analysis.PositiveThreshold != 0.1 {
		t.Errorf("expected PositiveThreshold=0.1, got %v", cfg.Analysis.PositiveThreshold)
	}
	if cfg.Analysis.NegativeThreshold != -0.1 {
		t.Errorf("expected NegativeThreshold=-0.1, got %v", cfg.Analysis.NegativeThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Crawler.ScrollRounds = 99
	cfg.Analysis.TopWords = 7

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Crawler.ScrollRounds != 99 {
		t.Errorf("expected ScrollRounds=99, got %d", loaded.Crawler.ScrollRounds)
	}
	if loaded.Analysis.TopWords != 7 {
		t.Errorf("expected TopWords=7, got %d", loaded.Analysis.TopWords)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "commentpulse" {
		t.Errorf("expected defaults, got Name=%s", cfg.Name)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PULSE_DB", "/tmp/override.db")
	t.Setenv("PULSE_DATA_DIR", "/tmp/dumps")
	t.Setenv("PULSE_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.Storage.DatabasePath != "/tmp/override.db" {
		t.Errorf("expected DatabasePath override, got %s", cfg.Storage.DatabasePath)
	}
	if cfg.Storage.DataDir != "/tmp/dumps" {
		t.Errorf("expected DataDir override, got %s", cfg.Storage.DataDir)
	}
	if cfg.Watch.InboxDir != "/tmp/dumps" {
		t.Errorf("expected InboxDir to follow DataDir, got %s", cfg.Watch.InboxDir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected Level=debug, got %s", cfg.Logging.Level)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"thresholds inverted", func(c *Config) {
			c.Analysis.PositiveThreshold = -0.2
			c.Analysis.NegativeThreshold = 0.2
		}},
		{"top_words zero", func(c *Config) { c.Analysis.TopWords = 0 }},
		{"bad outlier method", func(c *Config) { c.Analysis.OutlierMethod = "mad" }},
		{"zero rate limit", func(c *Config) { c.Crawler.RequestsPerSecond = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTimeoutHelpers(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetNavigationTimeout(); got != 30*time.Second {
		t.Errorf("expected 30s navigation timeout, got %v", got)
	}
	if got := cfg.GetScrollPause(); got != 800*time.Millisecond {
		t.Errorf("expected 800ms scroll pause, got %v", got)
	}

	// Malformed durations fall back
	cfg.Crawler.NavigationTimeout = "bogus"
	if got := cfg.GetNavigationTimeout(); got != 30*time.Second {
		t.Errorf("expected fallback timeout, got %v", got)
	}
	cfg.Watch.Debounce = ""
	if got := cfg.GetWatchDebounce(); got != 500*time.Millisecond {
		t.Errorf("expected fallback debounce, got %v", got)
	}
}

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/work")
	want := filepath.Join("/work", ".pulse", "config.yaml")
	if got != want {
		t.Errorf("ConfigPath = %s, want %s", got, want)
	}
}
