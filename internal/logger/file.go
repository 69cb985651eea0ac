package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/adl/internal/models"
)

// FileLogger writes run logs to a log directory (".adl/logs" by default).
// Each run gets a timestamped file and latest.log points to the newest one.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in .adl/logs at level "info"
func NewFileLogger() (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(filepath.Join(".adl", "logs"), "info")
}

// NewFileLoggerWithDirAndLevel creates a FileLogger in logDir
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405.000")))
	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}
	fl.writeRunLog("=== adl Run Log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))
	return fl, nil
}

// RunFile returns the path of this run's log file
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) LogTrace(message string) { fl.logWithLevel("TRACE", message) }
func (fl *FileLogger) LogDebug(message string) { fl.logWithLevel("DEBUG", message) }
func (fl *FileLogger) LogInfo(message string)  { fl.logWithLevel("INFO", message) }
func (fl *FileLogger) LogWarn(message string)  { fl.logWithLevel("WARN", message) }
func (fl *FileLogger) LogError(message string) { fl.logWithLevel("ERROR", message) }

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !shouldLog(fl.logLevel, strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogCompileSummary appends the compile summary block
func (fl *FileLogger) LogCompileSummary(summary models.CompileSummary) {
	if !shouldLog(fl.logLevel, "info") {
		return
	}

	var sb strings.Builder
	sb.WriteString("\n=== Compile Summary ===\n")
	fmt.Fprintf(&sb, "Files: %d\n", summary.Files)
	fmt.Fprintf(&sb, "Use cases: %d\n", summary.UseCases)
	fmt.Fprintf(&sb, "Resolved references: %d\n", summary.Resolved)
	fmt.Fprintf(&sb, "Rendered: %d\n", summary.Rendered)
	if len(summary.Unresolved) > 0 {
		fmt.Fprintf(&sb, "Unresolved: %s\n", strings.Join(summary.Unresolved, ", "))
	}
	if summary.Output != "" {
		fmt.Fprintf(&sb, "Output: %s\n", summary.Output)
	}
	fmt.Fprintf(&sb, "Duration: %s\n", formatDuration(summary.Duration))
	fl.writeRunLog(sb.String())
}

// LogUnresolved records each unresolved reference at WARN level
func (fl *FileLogger) LogUnresolved(ids []string) {
	for _, id := range ids {
		fl.LogWarn(fmt.Sprintf("Unresolved use case reference: #%s", id))
	}
}

// LogValidation records every finding of a validation report
func (fl *FileLogger) LogValidation(result models.ValidationResult) {
	for _, line := range validationLines(result) {
		fl.LogError(line)
	}
	if result.Valid() {
		fl.LogInfo(fmt.Sprintf("%s: %d use cases, no issues", sourceName(result), result.UseCaseCount))
	}
}

// Close flushes and closes the run log file
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
