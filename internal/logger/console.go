// Package logger provides logging implementations for todoscan runs.
//
// ConsoleLogger writes leveled, timestamped lines and renders the end-of-run
// summary. Color output is enabled automatically for terminals.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/todoscan/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs scan progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// It supports log level filtering to control message verbosity.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is a TTY that should receive colors.
// NO_COLOR disables colors through fatih/color.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if logLevelToInt(normalized) < 0 {
		return "info"
	}
	return normalized
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// logLevelToInt converts a log level string to its numeric value, or -1.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return -1
	}
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch level {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// LogSummary logs the scan summary at INFO level.
// Format: "[HH:MM:SS] === Scan Summary ===" followed by one line per count.
func (cl *ConsoleLogger) LogSummary(result models.ScanResult) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	cl.writer.Write([]byte(FormatSummary(result, cl.colorOutput)))
}

// FormatSummary renders the scan summary. Counts use thousands separators.
func FormatSummary(result models.ScanResult, colorOutput bool) string {
	ts := timestamp()
	paint := func(c color.Attribute, s string) string {
		if !colorOutput {
			return s
		}
		return color.New(c).Sprint(s)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", ts, paint(color.Bold, "=== Scan Summary ==="))
	fmt.Fprintf(&b, "[%s] Root: %s\n", ts, result.Root)
	fmt.Fprintf(&b, "[%s] Directories: %s\n", ts, humanize.Comma(int64(result.DirsVisited)))
	fmt.Fprintf(&b, "[%s] Files scanned: %s\n", ts, humanize.Comma(int64(result.FilesScanned)))
	fmt.Fprintf(&b, "[%s] Annotations: %s\n", ts, humanize.Comma(int64(result.Matches)))
	fmt.Fprintf(&b, "[%s] %s\n", ts, paint(color.FgGreen, "Entries written: "+humanize.Comma(int64(result.EntriesWritten))))
	if result.Skipped() > 0 {
		fmt.Fprintf(&b, "[%s] Skipped: %s (%d duplicate, %d empty)\n", ts,
			humanize.Comma(int64(result.Skipped())), result.DuplicateSkipped, result.EmptySkipped)
	}
	if n := len(result.Warnings); n > 0 {
		fmt.Fprintf(&b, "[%s] %s\n", ts, paint(color.FgYellow, fmt.Sprintf("Warnings: %d", n)))
	}
	fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, formatDuration(result.Duration))
	return b.String()
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "120ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(message string)             {}
func (n *NoOpLogger) LogDebug(message string)             {}
func (n *NoOpLogger) LogInfo(message string)              {}
func (n *NoOpLogger) LogWarn(message string)              {}
func (n *NoOpLogger) LogError(message string)             {}
func (n *NoOpLogger) LogSummary(result models.ScanResult) {}
