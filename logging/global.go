// Package logging wires log/slog to the console and a weekly rotating file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

type LoggingService struct {
	Logger *slog.Logger
	file   *RotatingLogger
}

var (
	DefaultLoggingService *LoggingService

	fallbackOnce sync.Once
	fallback     *slog.Logger
)

// InitLogger installs the global logger and makes it the slog default.
// An empty logDir logs to the console only.
func InitLogger(logDir, level string, retentionWeeks int, maxFileSize int64) {
	InitLoggerTo(os.Stdout, logDir, level, retentionWeeks, maxFileSize)
}

// InitLoggerTo is InitLogger with the console output sent to w.
func InitLoggerTo(w io.Writer, logDir, level string, retentionWeeks int, maxFileSize int64) {
	logger, file := SetupLogger(w, logDir, ParseLevel(level), retentionWeeks, maxFileSize)
	if DefaultLoggingService != nil {
		_ = DefaultLoggingService.Close()
	}
	DefaultLoggingService = &LoggingService{Logger: logger, file: file}
	slog.SetDefault(logger)
}

// Close releases the log file of the service, if any.
func (s *LoggingService) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// Close releases the global logger's file.
func Close() error {
	return DefaultLoggingService.Close()
}

func current() *slog.Logger {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		return DefaultLoggingService.Logger
	}
	fallbackOnce.Do(func() {
		fallback = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	})
	return fallback
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}
