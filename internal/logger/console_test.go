package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/harrison/todoscan/internal/models"
)

func TestConsoleLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLines []string
		skipLines []string
	}{
		{
			name:      "info hides debug and trace",
			level:     "info",
			wantLines: []string{"[INFO] i", "[WARN] w", "[ERROR] e"},
			skipLines: []string{"[DEBUG] d", "[TRACE] t"},
		},
		{
			name:      "debug shows debug",
			level:     "debug",
			wantLines: []string{"[DEBUG] d", "[INFO] i"},
			skipLines: []string{"[TRACE] t"},
		},
		{
			name:      "trace shows everything",
			level:     "TRACE",
			wantLines: []string{"[TRACE] t", "[DEBUG] d", "[ERROR] e"},
		},
		{
			name:      "error only",
			level:     "error",
			wantLines: []string{"[ERROR] e"},
			skipLines: []string{"[WARN] w", "[INFO] i"},
		},
		{
			name:      "invalid level defaults to info",
			level:     "chatty",
			wantLines: []string{"[INFO] i"},
			skipLines: []string{"[DEBUG] d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			l := NewConsoleLogger(buf, tt.level)

			l.LogTrace("t")
			l.LogDebug("d")
			l.LogInfo("i")
			l.LogWarn("w")
			l.LogError("e")

			out := buf.String()
			for _, want := range tt.wantLines {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, skip := range tt.skipLines {
				if strings.Contains(out, skip) {
					t.Errorf("output should not contain %q:\n%s", skip, out)
				}
			}
		})
	}
}

func TestConsoleLoggerNilWriter(t *testing.T) {
	l := NewConsoleLogger(nil, "trace")
	l.LogInfo("discarded")
	l.LogSummary(models.ScanResult{})
}

func TestConsoleLoggerNoColorForBuffers(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewConsoleLogger(buf, "info")
	l.LogWarn("plain")

	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("buffer output should not contain ANSI codes: %q", buf.String())
	}
}

func TestLogSummary(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewConsoleLogger(buf, "info")

	l.LogSummary(models.ScanResult{
		Root:             ".",
		DirsVisited:      3,
		FilesScanned:     1234,
		Matches:          10,
		EntriesWritten:   7,
		DuplicateSkipped: 2,
		EmptySkipped:     1,
		Warnings:         []string{"a.c: permission denied"},
		Duration:         1500 * time.Millisecond,
	})

	out := buf.String()
	for _, want := range []string{
		"=== Scan Summary ===",
		"Files scanned: 1,234",
		"Entries written: 7",
		"Skipped: 3 (2 duplicate, 1 empty)",
		"Warnings: 1",
		"Duration: 1s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestLogSummaryHiddenAboveInfo(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewConsoleLogger(buf, "warn")
	l.LogSummary(models.ScanResult{EntriesWritten: 1})
	if buf.Len() != 0 {
		t.Errorf("summary should be hidden at warn level, got %q", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{time.Hour + time.Second, "1h0m1s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
