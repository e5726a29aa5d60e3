package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGlobalLoggingService(t *testing.T) {
	tempDir := t.TempDir()
	previous := DefaultLoggingService
	previousDefault := slog.Default()
	t.Cleanup(func() {
		_ = Close()
		DefaultLoggingService = previous
		slog.SetDefault(previousDefault)
	})

	InitLogger(tempDir, "info", 2, 1024*1024)
	if DefaultLoggingService == nil {
		t.Fatal("DefaultLoggingService was not initialized")
	}

	Info("message from global logger")
	Warn("warning from global logger")

	expected := filepath.Join(tempDir, filePrefix+getWeekKey(time.Now())+".log")
	if _, err := os.Stat(expected); err != nil {
		t.Errorf("Expected log file %s: %v", expected, err)
	}
}

func TestPackageFunctionsWithoutInit(t *testing.T) {
	previous := DefaultLoggingService
	DefaultLoggingService = nil
	t.Cleanup(func() { DefaultLoggingService = previous })

	// must not panic
	Info("info")
	Warn("warn")
	Error("error")
	Debug("debug")

	if err := Close(); err != nil {
		t.Errorf("Close without init should be a no-op, got %v", err)
	}
}

func TestInitLoggerTo(t *testing.T) {
	previous := DefaultLoggingService
	previousDefault := slog.Default()
	t.Cleanup(func() {
		DefaultLoggingService = previous
		slog.SetDefault(previousDefault)
	})

	var buf strings.Builder
	InitLoggerTo(&buf, "", "warn", 0, 0)

	Info("hidden")
	Warn("shown", "drug", "xylazine")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "xylazine") {
		t.Errorf("Expected warning in output, got: %s", out)
	}
}
