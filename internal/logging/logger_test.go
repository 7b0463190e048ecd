package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetLogging() {
	CloseAll()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	workspace = ""
	config = loggingConfig{}
}

func writeLoggingConfig(t *testing.T, ws string, debugMode bool, level string) {
	t.Helper()
	configDir := filepath.Join(ws, ".pulse")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	content := "logging:\n  debug_mode: " + boolStr(debugMode) + "\n  level: " + level + "\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func TestDebugModeCreatesLogFiles(t *testing.T) {
	tempDir := t.TempDir()
	writeLoggingConfig(t, tempDir, true, "debug")

	resetLogging()
	defer resetLogging()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("Expected debug mode to be enabled")
	}

	Crawler("session started for %s", "v1")
	Store("opened database")
	Get(CategoryMining).Debug("counted %d tokens", 42)
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(tempDir, ".pulse", "logs"))
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"crawler", "store", "mining"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected a %s log file, got %v", want, names)
		}
	}
}

func TestProductionModeIsSilent(t *testing.T) {
	tempDir := t.TempDir()
	// No config file at all: production mode

	resetLogging()
	defer resetLogging()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if IsDebugMode() {
		t.Error("Expected debug mode to be disabled without config")
	}

	// Logging must be a no-op, not a crash
	Crawler("this should go nowhere")
	Get(CategoryExport).Error("neither should this")

	if _, err := os.Stat(filepath.Join(tempDir, ".pulse", "logs")); !os.IsNotExist(err) {
		t.Error("Expected no logs directory in production mode")
	}
}

func TestInitialize_EmptyWorkspace(t *testing.T) {
	resetLogging()
	defer resetLogging()

	if err := Initialize(""); err == nil {
		t.Error("Expected error for empty workspace")
	}
}

func TestTimer(t *testing.T) {
	resetLogging()
	defer resetLogging()

	timer := StartTimer(CategoryPipeline, "test-op")
	time.Sleep(5 * time.Millisecond)
	elapsed := timer.Stop()
	if elapsed < 5*time.Millisecond {
		t.Errorf("expected elapsed >= 5ms, got %v", elapsed)
	}

	timer = StartTimer(CategoryPipeline, "fast-op")
	if got := timer.StopWithThreshold(time.Second); got < 0 {
		t.Errorf("unexpected negative duration %v", got)
	}
}
