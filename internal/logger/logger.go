package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger // Main logger instance

// Initialize sets up the logger. Application logs go to LOG_DIR/roadsmart.log when
// logDir is set, and to stdout otherwise.
func Initialize(level, logDir string) {
	l := logrus.New()
	l.SetLevel(parseLevel(level))
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableColors:   logDir != "",
	})

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Printf("Failed to create logs directory: %v\n", err)
		} else {
			logPath := filepath.Join(logDir, "roadsmart.log")
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
			} else {
				l.SetOutput(logFile)
				l.SetReportCaller(true)
			}
		}
	}

	Logger = l

	Logger.WithFields(logrus.Fields{
		"log_level": l.GetLevel().String(),
		"log_dir":   logDir,
	}).Info("Logging system initialized")
}

func parseLevel(level string) logrus.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARN":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// GetLogger returns the configured logger, falling back to a stdout logger when
// Initialize has not been called (tests, one-off commands).
func GetLogger() *logrus.Logger {
	if Logger == nil {
		l := logrus.New()
		l.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))
		Logger = l
	}
	return Logger
}

// WithContext creates a logger with additional context fields
func WithContext(fields map[string]interface{}) *logrus.Entry {
	return GetLogger().WithFields(fields)
}

// WithUser creates a logger with user context
func WithUser(userID uint) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"user_id":   userID,
		"component": "controller",
	})
}

// WithReport creates a logger scoped to a report and the acting user.
func WithReport(reportID, actorID uint) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"report_id": reportID,
		"actor_id":  actorID,
		"component": "report_service",
	})
}

// WithTask creates a logger scoped to a repair task and the acting user.
func WithTask(taskID, actorID uint) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"task_id":   taskID,
		"actor_id":  actorID,
		"component": "task_service",
	})
}

// WithError creates a logger with error context
func WithError(err error, component string) *logrus.Entry {
	fields := logrus.Fields{
		"error":     err.Error(),
		"component": component,
	}

	if GetLogger().GetLevel() >= logrus.DebugLevel {
		fields["stack_trace"] = getStackTrace()
	}

	return GetLogger().WithFields(fields)
}

func getStackTrace() string {
	var stack []string
	for i := 2; i < 10; i++ {
		if pc, file, line, ok := runtime.Caller(i); ok {
			fn := runtime.FuncForPC(pc)
			stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		}
	}
	return strings.Join(stack, "\n")
}

func Debug(msg string, fields map[string]interface{}) {
	WithContext(fields).Debug(msg)
}

func Info(msg string, fields map[string]interface{}) {
	WithContext(fields).Info(msg)
}

func Warn(msg string, fields map[string]interface{}) {
	WithContext(fields).Warn(msg)
}

func Error(msg string, fields map[string]interface{}) {
	WithContext(fields).Error(msg)
}

func Fatal(msg string, fields map[string]interface{}) {
	WithContext(fields).Fatal(msg)
}
