// Package logger provides leveled logging for the adl compiler.
//
// Loggers write "[HH:MM:SS] [LEVEL] message" lines and know how to report
// compile summaries, unresolved references and validation reports.
// Implementations are safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/adl/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger writes timestamped messages to a writer.
// Color output is enabled when the writer is a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to writer.
// A nil writer discards all messages. Invalid levels fall back to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is a TTY stdout/stderr and NO_COLOR is unset
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || (f != os.Stdout && f != os.Stderr) {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel lowercases level, returning "info" for unknown values
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// IsValidLevel reports whether level names a known log level
func IsValidLevel(level string) bool {
	return normalizeLogLevel(level) == strings.ToLower(strings.TrimSpace(level))
}

func shouldLog(configured, messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(configured)
}

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
		return levelInfo
	}
}

// LogTrace logs a trace-level message
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !shouldLog(cl.logLevel, strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	lvl := level
	if cl.colorOutput {
		lvl = levelColor(level).Sprint(level)
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), lvl, message)
}

func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

// LogCompileSummary logs the result of a compiler run at INFO level.
// Unresolved references are listed in yellow.
func (cl *ConsoleLogger) LogCompileSummary(summary models.CompileSummary) {
	if cl.writer == nil || !shouldLog(cl.logLevel, "info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	scheme := newColorScheme(cl.colorOutput)
	ts := timestamp()

	output := fmt.Sprintf("[%s] %s\n", ts, scheme.header.Sprint("=== Compile Summary ==="))
	output += fmt.Sprintf("[%s] %s\n", ts, scheme.metric("Files", summary.Files))
	output += fmt.Sprintf("[%s] %s\n", ts, scheme.metric("Use cases", summary.UseCases))
	output += fmt.Sprintf("[%s] %s\n", ts, scheme.metric("Resolved references", summary.Resolved))
	output += fmt.Sprintf("[%s] %s\n", ts, scheme.success.Sprintf("Rendered: %d", summary.Rendered))
	if len(summary.Unresolved) > 0 {
		output += fmt.Sprintf("[%s] %s\n", ts, scheme.warn.Sprintf("Unresolved: %s", strings.Join(summary.Unresolved, ", ")))
	}
	if summary.Output != "" {
		output += fmt.Sprintf("[%s] %s\n", ts, scheme.metric("Output", summary.Output))
	}
	output += fmt.Sprintf("[%s] %s\n", ts, scheme.metric("Duration", formatDuration(summary.Duration)))

	io.WriteString(cl.writer, output)
}

// LogUnresolved warns about each reference no source could provide
func (cl *ConsoleLogger) LogUnresolved(ids []string) {
	for _, id := range ids {
		cl.LogWarn(fmt.Sprintf("Unresolved use case reference: #%s", id))
	}
}

// LogValidation logs a validation report: errors at ERROR level, a
// success line at INFO level otherwise.
func (cl *ConsoleLogger) LogValidation(result models.ValidationResult) {
	for _, line := range validationLines(result) {
		cl.LogError(line)
	}
	if result.Valid() {
		cl.LogInfo(fmt.Sprintf("%s: %d use cases, no issues", sourceName(result), result.UseCaseCount))
	}
}

func validationLines(result models.ValidationResult) []string {
	var lines []string
	src := sourceName(result)
	for _, e := range result.SyntaxErrors {
		if e.Line != nil {
			lines = append(lines, fmt.Sprintf("%s:%d: %s", src, *e.Line, e.Message))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s", src, e.Message))
		}
	}
	for _, e := range result.Errors {
		lines = append(lines, fmt.Sprintf("%s: [%s] %s", src, e.Code, e.Message))
	}
	return lines
}

func sourceName(result models.ValidationResult) string {
	if result.Source == "" {
		return "<input>"
	}
	return result.Source
}

// timestamp returns the current time as HH:MM:SS
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration renders d as "5s", "1m30s" or "2h15m", with millisecond
// precision below one second.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all messages
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string) {}
func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogCompileSummary(models.CompileSummary) {}
func (n *NoOpLogger) LogUnresolved([]string) {}
func (n *NoOpLogger) LogValidation(models.ValidationResult) {}
