package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRotatingLogger_WritesCurrentWeekFile(t *testing.T) {
	tempDir := t.TempDir()
	rl := NewRotatingLogger(tempDir, 1, 0)
	defer func() { _ = rl.Close() }()

	if _, err := rl.Write([]byte("first line\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	expected := filepath.Join(tempDir, filePrefix+getWeekKey(time.Now())+".log")
	content, err := os.ReadFile(expected)
	if err != nil {
		t.Fatalf("Expected log file %s: %v", expected, err)
	}
	if !strings.Contains(string(content), "first line") {
		t.Errorf("Log file does not contain written line: %q", content)
	}
}

func TestGetWeekKey(t *testing.T) {
	tests := []struct {
		date     time.Time
		expected string
	}{
		{time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC), "2025-W41"},
		{time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), "2020-W53"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
	}

	for _, tt := range tests {
		if got := getWeekKey(tt.date); got != tt.expected {
			t.Errorf("getWeekKey(%s) = %s, want %s", tt.date.Format(time.DateOnly), got, tt.expected)
		}
	}
}

func TestRotatingLogger_SizeRotation(t *testing.T) {
	tempDir := t.TempDir()
	rl := NewRotatingLogger(tempDir, 1, 64)
	defer func() { _ = rl.Close() }()

	line := []byte(strings.Repeat("x", 40) + "\n")
	for range 3 {
		if _, err := rl.Write(line); err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
	}

	week := getWeekKey(time.Now())
	base := filepath.Join(tempDir, filePrefix+week+".log")
	part1 := filepath.Join(tempDir, fmt.Sprintf("%s%s_01.log", filePrefix, week))
	part2 := filepath.Join(tempDir, fmt.Sprintf("%s%s_02.log", filePrefix, week))

	for _, f := range []string{base, part1, part2} {
		info, err := os.Stat(f)
		if err != nil {
			t.Fatalf("Expected log file %s: %v", f, err)
		}
		if info.Size() > 64 {
			t.Errorf("File %s exceeds size limit: %d", f, info.Size())
		}
	}
}

func TestRotatingLogger_ReopensExistingPart(t *testing.T) {
	tempDir := t.TempDir()
	week := getWeekKey(time.Now())

	full := filepath.Join(tempDir, filePrefix+week+".log")
	if err := os.WriteFile(full, bytes.Repeat([]byte("a"), 100), 0640); err != nil {
		t.Fatal(err)
	}
	part := filepath.Join(tempDir, fmt.Sprintf("%s%s_01.log", filePrefix, week))
	if err := os.WriteFile(part, []byte("short\n"), 0640); err != nil {
		t.Fatal(err)
	}

	rl := NewRotatingLogger(tempDir, 1, 100)
	defer func() { _ = rl.Close() }()

	if _, err := rl.Write([]byte("appended\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	content, _ := os.ReadFile(part)
	if string(content) != "short\nappended\n" {
		t.Errorf("Expected write to go to the existing part, got %q", content)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	tempDir := t.TempDir()
	rl := NewRotatingLogger(tempDir, 1, 0)

	oldFile := filepath.Join(tempDir, filePrefix+"2025-W30.log")
	newFile := filepath.Join(tempDir, filePrefix+getWeekKey(time.Now())+".log")
	foreign := filepath.Join(tempDir, "other.log")

	for _, f := range []string{oldFile, newFile, foreign} {
		if err := os.WriteFile(f, []byte("content"), 0640); err != nil {
			t.Fatal(err)
		}
	}
	threeWeeksAgo := time.Now().AddDate(0, 0, -21)
	for _, f := range []string{oldFile, foreign} {
		if err := os.Chtimes(f, threeWeeksAgo, threeWeeksAgo); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := rl.cleanupOldLogs()
	if err != nil {
		t.Fatalf("Failed to cleanup old logs: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted file, got %d", deleted)
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Errorf("Old log file should have been removed")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Errorf("Current log file should be kept: %v", err)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Errorf("Files without the log prefix should be kept: %v", err)
	}
}

func TestSetupLogger(t *testing.T) {
	t.Run("console and file", func(t *testing.T) {
		tempDir := t.TempDir()
		var console bytes.Buffer

		logger, rl := SetupLogger(&console, tempDir, slog.LevelInfo, 1, 0)
		if rl == nil {
			t.Fatal("Expected a rotating logger")
		}
		defer func() { _ = rl.Close() }()

		logger.Debug("hidden")
		logger.Info("index rebuilt", "drugs", 7)

		if !strings.Contains(console.String(), "index rebuilt") {
			t.Errorf("Console output missing message: %s", console.String())
		}
		if strings.Contains(console.String(), "hidden") {
			t.Errorf("Debug message should be filtered at info level")
		}

		content, err := os.ReadFile(filepath.Join(tempDir, filePrefix+getWeekKey(time.Now())+".log"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(content), `"drugs":7`) {
			t.Errorf("File output should be JSON, got: %s", content)
		}
	})

	t.Run("console only", func(t *testing.T) {
		var console bytes.Buffer
		logger, rl := SetupLogger(&console, "", slog.LevelDebug, 1, 0)
		if rl != nil {
			t.Error("Expected no rotating logger without a log directory")
		}
		logger.Debug("visible")
		if !strings.Contains(console.String(), "visible") {
			t.Errorf("Console output missing message: %s", console.String())
		}
	})
}

func TestRotatingLogger_CloseIsIdempotent(t *testing.T) {
	rl := NewRotatingLogger(t.TempDir(), 1, 0)
	if _, err := rl.Write([]byte("x\n")); err != nil {
		t.Fatal(err)
	}
	if err := rl.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := rl.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}
