package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func readLog(t *testing.T, dir string, cat Category) string {
	t.Helper()
	CloseAll() // flush
	path := filepath.Join(dir, time.Now().Format("2006-01-02")+"_"+string(cat)+".log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// TestAllCategoriesLog tests that all categories create log files when debug mode is on
func TestAllCategoriesLog(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(Options{DebugMode: true, Level: "debug", Dir: dir}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer Initialize(Options{})

	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	categories := []Category{CategoryBoot, CategoryAPI, CategorySession, CategoryUI, CategoryStub}
	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be enabled", cat)
		}
		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}

	for _, cat := range categories {
		content := readLog(t, dir, cat)
		for _, want := range []string{"info message", "debug message", "warn message", "error message"} {
			if !strings.Contains(content, want) {
				t.Errorf("%s log missing %q", cat, want)
			}
		}
	}
}

func TestDebugModeDisabled(t *testing.T) {
	dir := t.TempDir()
	logsDir := filepath.Join(dir, "logs")
	if err := Initialize(Options{DebugMode: false, Dir: logsDir}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	Get(CategoryAPI).Info("should not be written")
	API("nor this")

	if _, err := os.Stat(logsDir); !os.IsNotExist(err) {
		t.Errorf("logs directory should not exist when debug mode is off")
	}
	if IsCategoryEnabled(CategoryAPI) {
		t.Error("categories must be disabled when debug mode is off")
	}
}

func TestDebugModeRequiresDir(t *testing.T) {
	defer Initialize(Options{})
	if err := Initialize(Options{DebugMode: true}); err == nil {
		t.Error("expected error when debug mode has no directory")
	}
}

func TestCategoryToggle(t *testing.T) {
	dir := t.TempDir()
	err := Initialize(Options{
		DebugMode:  true,
		Level:      "info",
		Dir:        dir,
		Categories: map[string]bool{"ui": false, "api": true},
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer Initialize(Options{})

	if IsCategoryEnabled(CategoryUI) {
		t.Error("ui should be disabled")
	}
	if !IsCategoryEnabled(CategoryAPI) {
		t.Error("api should be enabled")
	}
	if !IsCategoryEnabled(CategorySession) {
		t.Error("unlisted categories default to enabled")
	}

	UI("hidden")
	API("visible")

	uiPath := filepath.Join(dir, time.Now().Format("2006-01-02")+"_ui.log")
	if _, err := os.Stat(uiPath); !os.IsNotExist(err) {
		t.Error("disabled category must not create a file")
	}
	if !strings.Contains(readLog(t, dir, CategoryAPI), "visible") {
		t.Error("api log missing entry")
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(Options{DebugMode: true, Level: "warn", Dir: dir}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer Initialize(Options{})

	SessionDebug("debug entry")
	Session("info entry")
	SessionWarn("warn entry")

	content := readLog(t, dir, CategorySession)
	if strings.Contains(content, "debug entry") || strings.Contains(content, "info entry") {
		t.Errorf("entries below warn should be filtered: %s", content)
	}
	if !strings.Contains(content, "warn entry") {
		t.Error("warn entry missing")
	}
}

func TestJSONFormatAndRequestID(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(Options{DebugMode: true, Level: "debug", JSONFormat: true, Dir: dir}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer Initialize(Options{})

	WithRequestID(CategoryAPI, "req-123").Info("sent %d bytes", 42)

	content := readLog(t, dir, CategoryAPI)
	for _, want := range []string{`"req":"req-123"`, `"msg":"sent 42 bytes"`, `"cat":"api"`} {
		if !strings.Contains(content, want) {
			t.Errorf("JSON log missing %s: %s", want, content)
		}
	}
}

func TestConcurrentGet(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(Options{DebugMode: true, Dir: dir}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer Initialize(Options{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Get(CategoryUI).Info("goroutine %d", n)
		}(i)
	}
	wg.Wait()

	loggersMu.RLock()
	count := len(loggers)
	loggersMu.RUnlock()
	// boot logger from Initialize plus ui
	if count != 2 {
		t.Errorf("expected 2 cached loggers, got %d", count)
	}
}

func TestTimerLogging(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(Options{DebugMode: true, Level: "debug", Dir: dir}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer Initialize(Options{})

	timer := StartTimer(CategoryAPI, "chat request")
	time.Sleep(5 * time.Millisecond)
	if elapsed := timer.StopWithThreshold(time.Millisecond); elapsed < 5*time.Millisecond {
		t.Errorf("elapsed too small: %v", elapsed)
	}

	if !strings.Contains(readLog(t, dir, CategoryAPI), "chat request took") {
		t.Error("expected threshold warning in api log")
	}
}

func TestNoopLoggerIsSafe(t *testing.T) {
	l := &Logger{category: CategoryUI}
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	if l.With("k", "v") != l {
		t.Error("With on a no-op logger should return the same logger")
	}
}
