package cmd

import (
	"github.com/harrison/adl/internal/models"
)

// runLogger is what the commands log through: the compiler and code block
// logger methods plus validation reports
type runLogger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogCompileSummary(summary models.CompileSummary)
	LogUnresolved(ids []string)
	LogValidation(result models.ValidationResult)
}

// multiLogger fans every call out to several loggers
type multiLogger struct {
	loggers []runLogger
}

func (ml *multiLogger) LogTrace(message string) {
	for _, l := range ml.loggers {
		l.LogTrace(message)
	}
}

func (ml *multiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

func (ml *multiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

func (ml *multiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

func (ml *multiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}

// LogCompileSummary forwards to all loggers
func (ml *multiLogger) LogCompileSummary(summary models.CompileSummary) {
	for _, l := range ml.loggers {
		l.LogCompileSummary(summary)
	}
}

// LogUnresolved forwards to all loggers
func (ml *multiLogger) LogUnresolved(ids []string) {
	for _, l := range ml.loggers {
		l.LogUnresolved(ids)
	}
}

// LogValidation forwards to all loggers
func (ml *multiLogger) LogValidation(result models.ValidationResult) {
	for _, l := range ml.loggers {
		l.LogValidation(result)
	}
}
