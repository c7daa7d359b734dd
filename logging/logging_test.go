package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/giygas/minsan-api/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetConsoleLogLevel(t *testing.T) {
	tests := []struct {
		name        string
		env         config.Environment
		logLevelStr string
		verbose     bool
		expected    slog.Level
	}{
		{"dev defaults to info", config.EnvDevelopment, "", false, slog.LevelInfo},
		{"test quiet defaults to error", config.EnvTest, "", false, slog.LevelError},
		{"test verbose defaults to info", config.EnvTest, "", true, slog.LevelInfo},
		{"prod defaults to warn", config.EnvProduction, "", false, slog.LevelWarn},
		{"staging defaults to warn", config.EnvStaging, "", false, slog.LevelWarn},
		{"prod with debug override", config.EnvProduction, "debug", false, slog.LevelDebug},
		{"dev with error override", config.EnvDevelopment, "error", false, slog.LevelError},
		{"test with debug override (ignored)", config.EnvTest, "debug", false, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetConsoleLogLevel(tt.env, tt.logLevelStr, tt.verbose)
			if got != tt.expected {
				t.Errorf("GetConsoleLogLevel(%v, %q, %v) = %v, want %v", tt.env, tt.logLevelStr, tt.verbose, got, tt.expected)
			}
		})
	}
}

func TestInitLoggerWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	service := InitLogger(Options{
		Dir:     dir,
		Env:     config.EnvDevelopment,
		Level:   "info",
		Console: &console,
	})
	defer func() {
		DefaultLoggingService = nil
		_ = service.Close()
	}()

	Info("catalog reloaded", "products", 3)
	Debug("hidden")

	if !strings.Contains(console.String(), "catalog reloaded") {
		t.Errorf("console should contain message, got: %s", console.String())
	}
	if strings.Contains(console.String(), "hidden") {
		t.Error("debug should be filtered at info level")
	}

	content, err := os.ReadFile(filepath.Join(dir, filePrefix+weekKey(time.Now())+".log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("file log should be JSON: %v (%s)", err, content)
	}
	if record["msg"] != "catalog reloaded" {
		t.Errorf("unexpected file record: %v", record)
	}
}

func TestPackageFunctionsWithoutInit(t *testing.T) {
	DefaultLoggingService = nil
	// Must not panic before InitLogger
	Info("info")
	Warn("warn")
	Error("error")
	Debug("debug")
}

func TestWeekKey(t *testing.T) {
	got := weekKey(time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC))
	if got != "2026-W01" {
		t.Errorf("Expected 2026-W01, got %s", got)
	}
	got = weekKey(time.Date(2027, time.January, 1, 12, 0, 0, 0, time.UTC))
	if got != "2026-W53" {
		t.Errorf("Expected 2026-W53, got %s", got)
	}
}

func TestRotatingWriterSizeLimit(t *testing.T) {
	dir := t.TempDir()
	w, err := NewRotatingWriter(dir, 4, 100)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer w.Close()

	line := []byte(strings.Repeat("x", 59) + "\n")
	for i := 0; i < 3; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	week := weekKey(time.Now())
	for _, name := range []string{
		filePrefix + week + ".log",
		filePrefix + week + "_01.log",
		filePrefix + week + "_02.log",
	} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
			continue
		}
		if info.Size() != 60 {
			t.Errorf("Expected %s to hold one line, got %d bytes", name, info.Size())
		}
	}
}

func TestRotatingWriterWeekChange(t *testing.T) {
	dir := t.TempDir()
	w, err := NewRotatingWriter(dir, 4, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer w.Close()

	start := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	w.mu.Lock()
	w.now = func() time.Time { return start }
	w.mu.Unlock()
	_, _ = w.Write([]byte("a\n"))

	w.mu.Lock()
	w.now = func() time.Time { return start.AddDate(0, 0, 7) }
	w.mu.Unlock()
	_, _ = w.Write([]byte("b\n"))

	for _, week := range []string{weekKey(start), weekKey(start.AddDate(0, 0, 7))} {
		if _, err := os.Stat(filepath.Join(dir, filePrefix+week+".log")); err != nil {
			t.Errorf("Expected file for week %s: %v", week, err)
		}
	}
}

func TestRotatingWriterCleanup(t *testing.T) {
	dir := t.TempDir()
	w, err := NewRotatingWriter(dir, 1, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer w.Close()

	old := filepath.Join(dir, filePrefix+"2020-W01.log")
	unrelated := filepath.Join(dir, "other.log")
	for _, path := range []string{old, unrelated} {
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		past := time.Now().Add(-30 * 24 * time.Hour)
		_ = os.Chtimes(path, past, past)
	}

	deleted, err := w.cleanup()
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted file, got %d", deleted)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old log should be removed")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("unrelated file should be kept")
	}
}

func TestRotatingWriterConcurrentWrites(t *testing.T) {
	w, err := NewRotatingWriter(t.TempDir(), 4, 1024)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer w.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := w.Write([]byte("concurrent line\n")); err != nil {
					t.Errorf("Write failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()
}
